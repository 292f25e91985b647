package file

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/etl"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileService(t *testing.T) *fileServiceImpl {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return &fileServiceImpl{
		storage: local,
		now: func() time.Time {
			return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
		},
	}
}

func TestUploadDataFile(t *testing.T) {
	ctx := context.Background()
	svc := newTestFileService(t)
	year := 2025

	path, err := svc.UploadDataFile(ctx, &year, strings.NewReader("payload"), "BSTT data (final).csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "uploads/2025/20250310T093000_"), path)
	assert.True(t, strings.HasSuffix(path, "_BSTT_data__final_.csv"), path)

	rc, err := svc.OpenFile(ctx, path)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(b))

	require.NoError(t, svc.DeleteFile(ctx, path))
	_, err = svc.OpenFile(ctx, path)
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}

func TestUploadDataFile_UnknownYearAndType(t *testing.T) {
	ctx := context.Background()
	svc := newTestFileService(t)

	path, err := svc.UploadDataFile(ctx, nil, strings.NewReader("x"), "export.xlsx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "uploads/unknown/"), path)

	_, err = svc.UploadDataFile(ctx, nil, strings.NewReader("x"), "export.pdf")
	assert.ErrorIs(t, err, etl.ErrUnsupportedFileType)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bstt_data_2025.csv", "bstt_data_2025.csv"},
		{"../../etc/passwd.csv", "passwd.csv"},
		{`C:\exports\YTD Data.xlsx`, "YTD_Data.xlsx"},
		{"año-2025.csv", "a_o-2025.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}
