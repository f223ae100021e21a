package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"обычная категория", "Hydraulics", "Hydraulics"},
		{"процент", "100%", `100\%`},
		{"подчеркивание", "air_cond", `air\_cond`},
		{"обратный слеш", `a\b`, `a\\b`},
		{"все сразу", `%_\`, `\%\_\\`},
		{"пустая строка", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}
