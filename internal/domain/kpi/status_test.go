package kpi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholds_Grade(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name     string
		result   KPIResult
		expected StatusBlock
	}{
		{
			name:   "all green",
			result: KPIResult{FingerRate: 95, ProvisionalRate: 0.99, WriteInRate: 2.9, MissingCORate: 1.9},
			expected: StatusBlock{
				FingerRate: StatusGreen, ProvisionalRate: StatusGreen,
				WriteInRate: StatusGreen, MissingCORate: StatusGreen,
			},
		},
		{
			name:   "band edges are yellow",
			result: KPIResult{FingerRate: 90, ProvisionalRate: 3, WriteInRate: 5, MissingCORate: 5},
			expected: StatusBlock{
				FingerRate: StatusYellow, ProvisionalRate: StatusYellow,
				WriteInRate: StatusYellow, MissingCORate: StatusYellow,
			},
		},
		{
			name:   "lower green edges are yellow",
			result: KPIResult{FingerRate: 94.9, ProvisionalRate: 1, WriteInRate: 3, MissingCORate: 2},
			expected: StatusBlock{
				FingerRate: StatusYellow, ProvisionalRate: StatusYellow,
				WriteInRate: StatusYellow, MissingCORate: StatusYellow,
			},
		},
		{
			name:   "all red",
			result: KPIResult{FingerRate: 89.9, ProvisionalRate: 3.01, WriteInRate: 5.1, MissingCORate: 5.1},
			expected: StatusBlock{
				FingerRate: StatusRed, ProvisionalRate: StatusRed,
				WriteInRate: StatusRed, MissingCORate: StatusRed,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, th.Grade(tt.result))
		})
	}
}

func TestThresholds_NeedsEnrollment(t *testing.T) {
	th := DefaultThresholds()
	assert.True(t, th.NeedsEnrollment(2))
	assert.True(t, th.NeedsEnrollment(5))
	assert.False(t, th.NeedsEnrollment(1))
	assert.False(t, th.NeedsEnrollment(0))

	th.EnrollmentThreshold = 3
	assert.False(t, th.NeedsEnrollment(2))
	assert.True(t, th.NeedsEnrollment(3))
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())

	th := DefaultThresholds()
	th.FingerYellow = 97
	assert.ErrorIs(t, th.Validate(), ErrInvalidThresholds)

	th = DefaultThresholds()
	th.EnrollmentThreshold = 0
	assert.ErrorIs(t, th.Validate(), ErrInvalidThresholds)
}

func TestEmployeeRequest_Validate(t *testing.T) {
	req := EmployeeRequest{}
	assert.NoError(t, req.Validate())
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 100, req.Limit)
	assert.Equal(t, "applicant_id", req.SortBy)
	assert.Equal(t, "asc", req.SortOrder)

	bad := EmployeeRequest{SortBy: "salary", SortOrder: "up"}
	err := bad.Validate()
	assert.Error(t, err)
}
