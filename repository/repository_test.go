package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"beatles", "beatles"},
		{"%", `\%`},
		{"_", `\_`},
		{`\`, `\\`},
		{"50% off", `50\% off`},
		{"a_b%c", `a\_b\%c`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, escapeLike(c.in), "input %q", c.in)
	}
}
