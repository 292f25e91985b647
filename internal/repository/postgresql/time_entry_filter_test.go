package postgresql

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/stretchr/testify/assert"
)

func TestBuildFilterWhere_Empty(t *testing.T) {
	where, args, next := buildFilterWhere(timeentry.Filter{}, 1)
	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
	assert.Equal(t, 1, next)
}

func TestBuildFilterWhere(t *testing.T) {
	year := 2025
	office := "Dallas"
	dept := "ware"
	et := "finger"
	from := "2025-01-01"
	bad := "not-a-date"

	where, args, next := buildFilterWhere(timeentry.Filter{
		Year:          &year,
		Office:        &office,
		EntryType:     &et,
		WeekEndingGTE: &from,
		WeekEndingLTE: &bad,
		Department:    &dept,
		Offices:       []string{"A", "B"},
	}, 1)

	assert.Equal(t, "1=1 AND year = $1 AND LOWER(xlc_operation) = LOWER($2) AND xlc_operation = ANY($3)"+
		" AND entry_type = $4 AND dt_end_cli_work_week >= $5 AND department_name ILIKE '%' || $6 || '%'", where)
	assert.Equal(t, []interface{}{
		2025, "Dallas", []string{"A", "B"}, "Finger",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "ware",
	}, args)
	assert.Equal(t, 7, next)
}

func TestBuildFilterWhere_StartIndex(t *testing.T) {
	shift := "2"
	where, args, next := buildFilterWhere(timeentry.Filter{Shift: &shift}, 3)
	assert.Equal(t, "1=1 AND shift_number = $3", where)
	assert.Equal(t, []interface{}{"2"}, args)
	assert.Equal(t, 4, next)
}
