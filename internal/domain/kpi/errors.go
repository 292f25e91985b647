package kpi

import "errors"

// KPI domain errors
var (
	ErrInvalidThresholds = errors.New("invalid KPI thresholds")
)
