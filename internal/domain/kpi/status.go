package kpi

import "fmt"

// Status is the traffic-light grade of a compliance rate.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// Thresholds holds the configured grading bands and the enrollment trigger.
type Thresholds struct {
	FingerGreen  float64 `json:"finger_green"`  // finger_rate >= green is green
	FingerYellow float64 `json:"finger_yellow"` // finger_rate >= yellow is yellow

	ProvisionalGreen  float64 `json:"provisional_green"`  // provisional_rate < green is green
	ProvisionalYellow float64 `json:"provisional_yellow"` // provisional_rate <= yellow is yellow

	WriteInGreen  float64 `json:"write_in_green"`
	WriteInYellow float64 `json:"write_in_yellow"`

	MissingCOGreen  float64 `json:"missing_co_green"`
	MissingCOYellow float64 `json:"missing_co_yellow"`

	// EnrollmentThreshold is the provisional entry count at which an
	// employee is flagged for biometric re-enrollment.
	EnrollmentThreshold int `json:"enrollment_threshold"`
}

// DefaultThresholds returns the standard compliance targets.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FingerGreen:         95,
		FingerYellow:        90,
		ProvisionalGreen:    1,
		ProvisionalYellow:   3,
		WriteInGreen:        3,
		WriteInYellow:       5,
		MissingCOGreen:      2,
		MissingCOYellow:     5,
		EnrollmentThreshold: 2,
	}
}

// HigherIsBetter grades a metric where larger values are healthier.
func HigherIsBetter(v, green, yellow float64) Status {
	switch {
	case v >= green:
		return StatusGreen
	case v >= yellow:
		return StatusYellow
	default:
		return StatusRed
	}
}

// LowerIsBetter grades a metric where smaller values are healthier.
func LowerIsBetter(v, green, yellow float64) Status {
	switch {
	case v < green:
		return StatusGreen
	case v <= yellow:
		return StatusYellow
	default:
		return StatusRed
	}
}

// StatusBlock grades the four compliance rates of a result. It is left
// empty for a group with no entries.
type StatusBlock struct {
	FingerRate      Status `json:"finger_rate,omitempty"`
	ProvisionalRate Status `json:"provisional_rate,omitempty"`
	WriteInRate     Status `json:"write_in_rate,omitempty"`
	MissingCORate   Status `json:"missing_co_rate,omitempty"`
}

// Grade classifies the rates of r against t.
func (t Thresholds) Grade(r KPIResult) StatusBlock {
	return StatusBlock{
		FingerRate:      HigherIsBetter(r.FingerRate, t.FingerGreen, t.FingerYellow),
		ProvisionalRate: LowerIsBetter(r.ProvisionalRate, t.ProvisionalGreen, t.ProvisionalYellow),
		WriteInRate:     LowerIsBetter(r.WriteInRate, t.WriteInGreen, t.WriteInYellow),
		MissingCORate:   LowerIsBetter(r.MissingCORate, t.MissingCOGreen, t.MissingCOYellow),
	}
}

// NeedsEnrollment reports whether a provisional count reaches the trigger.
func (t Thresholds) NeedsEnrollment(provisionalCount int) bool {
	return t.EnrollmentThreshold > 0 && provisionalCount >= t.EnrollmentThreshold
}

// Validate checks that every band is ordered and the enrollment trigger is set.
func (t Thresholds) Validate() error {
	switch {
	case t.FingerYellow > t.FingerGreen:
		return fmt.Errorf("%w: finger yellow %.2f above green %.2f", ErrInvalidThresholds, t.FingerYellow, t.FingerGreen)
	case t.ProvisionalGreen > t.ProvisionalYellow:
		return fmt.Errorf("%w: provisional green %.2f above yellow %.2f", ErrInvalidThresholds, t.ProvisionalGreen, t.ProvisionalYellow)
	case t.WriteInGreen > t.WriteInYellow:
		return fmt.Errorf("%w: write-in green %.2f above yellow %.2f", ErrInvalidThresholds, t.WriteInGreen, t.WriteInYellow)
	case t.MissingCOGreen > t.MissingCOYellow:
		return fmt.Errorf("%w: missing c/o green %.2f above yellow %.2f", ErrInvalidThresholds, t.MissingCOGreen, t.MissingCOYellow)
	case t.EnrollmentThreshold < 1:
		return fmt.Errorf("%w: enrollment threshold must be at least 1", ErrInvalidThresholds)
	}
	return nil
}
