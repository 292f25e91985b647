package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/bstt-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/bstt-backend-go/internal/pkg/validator"
)

// queryParser reads typed query parameters, collecting a validation error
// for every value that does not parse.
type queryParser struct {
	q    url.Values
	errs validator.ValidationErrors
}

func newQueryParser(q url.Values) *queryParser {
	return &queryParser{q: q}
}

func (p *queryParser) str(name string) *string {
	v := strings.TrimSpace(p.q.Get(name))
	if v == "" {
		return nil
	}
	return &v
}

func (p *queryParser) intPtr(name string) *int {
	v := p.str(name)
	if v == nil {
		return nil
	}
	n, err := strconv.Atoi(*v)
	if err != nil {
		p.errs = append(p.errs, validator.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%s must be a number", name),
		})
		return nil
	}
	return &n
}

func (p *queryParser) intValue(name string) int {
	if n := p.intPtr(name); n != nil {
		return *n
	}
	return 0
}

func (p *queryParser) boolValue(name string) bool {
	v := p.str(name)
	if v == nil {
		return false
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		p.errs = append(p.errs, validator.ValidationError{
			Field:   name,
			Message: fmt.Sprintf("%s must be true or false", name),
		})
	}
	return b
}

// list accepts both repeated parameters and comma separated values.
func (p *queryParser) list(name string) []string {
	var out []string
	for _, raw := range p.q[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func (p *queryParser) err() error {
	if len(p.errs) > 0 {
		return p.errs
	}
	return nil
}

func (p *queryParser) filter() timeentry.Filter {
	return timeentry.Filter{
		Year:    p.intPtr("year"),
		YearGTE: p.intPtr("year_gte"),
		YearLTE: p.intPtr("year_lte"),

		Office:  p.str("office"),
		Offices: p.list("offices"),

		EntryType:  p.str("entry_type"),
		EntryTypes: p.list("entry_types"),

		WeekEnding:    p.str("week_ending"),
		WeekEndingGTE: p.str("week_ending_gte"),
		WeekEndingLTE: p.str("week_ending_lte"),

		WeekNumber:    p.intPtr("week_number"),
		WeekNumberGTE: p.intPtr("week_number_gte"),
		WeekNumberLTE: p.intPtr("week_number_lte"),
		WeekYear:      p.intPtr("week_year"),
		WeekYearGTE:   p.intPtr("week_year_gte"),
		WeekYearLTE:   p.intPtr("week_year_lte"),

		Department:  p.str("department"),
		Departments: p.list("departments"),

		Shift:       p.str("shift"),
		ApplicantID: p.str("applicant_id"),
		FullName:    p.str("full_name"),
	}
}

// parseFilter reads a timeentry.Filter from the query string. Range and
// format checks are left to Filter.Validate in the services.
func parseFilter(q url.Values) (timeentry.Filter, error) {
	p := newQueryParser(q)
	f := p.filter()
	return f, p.err()
}
