package timeentry

import "strings"

// EntryType is the compliance category of a time entry.
type EntryType string

const (
	EntryTypeFinger          EntryType = "Finger"
	EntryTypeProvisional     EntryType = "Provisional Entry"
	EntryTypeWriteIn         EntryType = "Write-In"
	EntryTypeMissingClockOut EntryType = "Missing c/o"
)

// EntryTypes lists every category in report column order.
var EntryTypes = []EntryType{
	EntryTypeFinger,
	EntryTypeMissingClockOut,
	EntryTypeProvisional,
	EntryTypeWriteIn,
}

// ParseEntryType matches s case-insensitively against the known categories.
func ParseEntryType(s string) (EntryType, bool) {
	for _, et := range EntryTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(et)) {
			return et, true
		}
	}
	return "", false
}

// Method is the normalised clock method vocabulary.
type Method int

const (
	MethodAbsent Method = iota
	MethodFinger
	MethodProvisional
	MethodWriteIn
	MethodUnknown
)

func (m Method) String() string {
	switch m {
	case MethodAbsent:
		return "absent"
	case MethodFinger:
		return "finger"
	case MethodProvisional:
		return "provisional"
	case MethodWriteIn:
		return "write-in"
	default:
		return "unknown"
	}
}

var methodAliases = map[string]Method{
	"finger":            MethodFinger,
	"fingerprint":       MethodFinger,
	"finger scan":       MethodFinger,
	"fingerscan":        MethodFinger,
	"biometric":         MethodFinger,
	"provisional":       MethodProvisional,
	"provisional entry": MethodProvisional,
	"provisional scan":  MethodProvisional,
	"prov":              MethodProvisional,
	"write-in":          MethodWriteIn,
	"write in":          MethodWriteIn,
	"writein":           MethodWriteIn,
	"manual":            MethodWriteIn,
	"manual entry":      MethodWriteIn,
}

// ParseMethod normalises a raw method code. Blank codes (including the
// placeholders exports use for empty cells) are MethodAbsent.
func ParseMethod(code string) Method {
	c := strings.ToLower(strings.TrimSpace(code))
	switch c {
	case "", "nan", "null", "none", "n/a", "-":
		return MethodAbsent
	}
	if m, ok := methodAliases[c]; ok {
		return m
	}
	return MethodUnknown
}

// Classify assigns exactly one entry type from the clock-in and clock-out
// method codes. Rules are evaluated in order and the first match wins:
//
//  1. no clock-out method          -> Missing c/o
//  2. any manual write-in          -> Write-In
//  3. any provisional scan         -> Provisional Entry
//  4. finger on both sides         -> Finger
//
// Codes outside the vocabulary, and a blank clock-in paired with a recorded
// clock-out, are treated as manual write-ins.
func Classify(clockInMethod, clockOutMethod string) EntryType {
	in := ParseMethod(clockInMethod)
	out := ParseMethod(clockOutMethod)

	if out == MethodAbsent {
		return EntryTypeMissingClockOut
	}
	if isManual(in) || isManual(out) {
		return EntryTypeWriteIn
	}
	if in == MethodProvisional || out == MethodProvisional {
		return EntryTypeProvisional
	}
	return EntryTypeFinger
}

func isManual(m Method) bool {
	return m == MethodWriteIn || m == MethodUnknown || m == MethodAbsent
}
