package etl

import (
	"path/filepath"
	"strings"
)

const (
	KindCSV  = "csv"
	KindXLSX = "xlsx"
)

// FileKind returns the data format implied by a file name's extension.
func FileKind(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return KindCSV
	case ".xlsx":
		return KindXLSX
	}
	return ""
}
