package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimMethod(t *testing.T) {
	cases := []struct {
		name     string
		pattern  string
		expected string
	}{
		{
			name:     "strips method from pattern",
			pattern:  "GET /weather/get",
			expected: "/weather/get",
		},
		{
			name:     "strips other methods",
			pattern:  "POST /weather/get",
			expected: "/weather/get",
		},
		{
			name:     "leaves bare path untouched",
			pattern:  "/weather/get",
			expected: "/weather/get",
		},
		{
			name:     "leaves host-qualified pattern untouched",
			pattern:  "example.com/weather",
			expected: "example.com/weather",
		},
		{
			name:     "ignores non-method prefix",
			pattern:  "FETCH /weather/get",
			expected: "FETCH /weather/get",
		},
		{
			name:     "empty pattern",
			pattern:  "",
			expected: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TrimMethod(tc.pattern))
		})
	}
}
