package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Layouts accepted on the wire
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Validation rule patterns
var (
	// Department and subject codes: upper-case letters and digits
	CodePattern = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

	// Academic year such as 2024-2025
	AcademicYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

	PasswordMinLength = 6
)

// Tags registered with the gin validator
const (
	TagCode         = "code"
	TagAcademicYear = "academic_year"
	TagDate         = "date"
	TagClock        = "clock"
)

// Register installs the custom rules on gin's validator engine. It is safe to
// call more than once.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterOn(v)
}

// RegisterOn installs the custom rules on v.
func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagCode:         validateCode,
		TagAcademicYear: validateAcademicYear,
		TagDate:         validateDate,
		TagClock:        validateClock,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validateCode(fl validator.FieldLevel) bool {
	return CodePattern.MatchString(fl.Field().String())
}

// validateAcademicYear accepts consecutive years only, e.g. 2024-2025.
func validateAcademicYear(fl validator.FieldLevel) bool {
	return IsAcademicYear(fl.Field().String())
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := ParseClock(fl.Field().String())
	return err == nil
}

// IsAcademicYear reports whether s has the form YYYY-YYYY with consecutive years.
func IsAcademicYear(s string) bool {
	m := AcademicYearPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}

// ParseClock normalises "9:00", "09:00" or "09:00:00" to "09:00".
func ParseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04:05", "3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", &time.ParseError{Layout: ClockLayout, Value: s}
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
