package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCodeFormatRender(t *testing.T) {
	now := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)

	f := CodeFormat{Pattern: "INT-{YEAR}-{MONTH}-{SEQUENCE}", SequenceLength: 4}
	assert.Equal(t, "INT-2025-06-0001", f.Render(1, now))
	assert.Equal(t, "INT-2025-06-0042", f.Render(42, now))

	f = CodeFormat{Pattern: "DEV-{YEAR}-{SEQUENCE}", SequenceLength: 4}
	assert.Equal(t, "DEV-2025-0007", f.Render(7, now))

	f = CodeFormat{Pattern: "VEH-{SEQUENCE}", SequenceLength: 4}
	assert.Equal(t, "VEH-0123", f.Render(123, now))

	// Sequence wider than the pad is kept whole
	assert.Equal(t, "VEH-12345", f.Render(12345, now))

	// Zero length falls back to 4
	f = CodeFormat{Pattern: "X-{SEQUENCE}"}
	assert.Equal(t, "X-0009", f.Render(9, now))

	f = CodeFormat{Pattern: "LOG-{YEAR}-{MONTH}-{DAY}-{SEQUENCE}", SequenceLength: 2}
	assert.Equal(t, "LOG-2025-06-05-03", f.Render(3, now))
}

func TestCodeFormatPeriodKey(t *testing.T) {
	now := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		pattern string
		want    string
	}{
		{"INT-{YEAR}-{MONTH}-{SEQUENCE}", "2025-06"},
		{"DEV-{YEAR}-{SEQUENCE}", "2025"},
		{"LOG-{YEAR}-{MONTH}-{DAY}-{SEQUENCE}", "2025-06-05"},
		{"VEH-{SEQUENCE}", ""},
	}
	for _, tc := range cases {
		f := CodeFormat{Pattern: tc.pattern}
		assert.Equal(t, tc.want, f.PeriodKey(now), tc.pattern)
	}
}
