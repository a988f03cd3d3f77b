package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	type payload struct {
		Code  string `validate:"code"`
		Year  string `validate:"academic_year"`
		Date  string `validate:"date"`
		Clock string `validate:"clock"`
	}

	assert.NoError(t, v.Struct(payload{Code: "CS301", Year: "2024-2025", Date: "2024-09-02", Clock: "09:00"}))

	tests := []struct {
		name string
		p    payload
	}{
		{"lower case code", payload{Code: "cs301", Year: "2024-2025", Date: "2024-09-02", Clock: "09:00"}},
		{"non consecutive years", payload{Code: "CS301", Year: "2024-2026", Date: "2024-09-02", Clock: "09:00"}},
		{"bad date", payload{Code: "CS301", Year: "2024-2025", Date: "02/09/2024", Clock: "09:00"}},
		{"bad clock", payload{Code: "CS301", Year: "2024-2025", Date: "2024-09-02", Clock: "25:00"}},
	}
	for _, tt := range tests {
		assert.Error(t, v.Struct(tt.p), tt.name)
	}
}

func TestParseClock(t *testing.T) {
	for in, want := range map[string]string{"09:00": "09:00", "9:30": "09:30", "14:05:00": "14:05"} {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseClock("noon")
	assert.Error(t, err)
}
