package examengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCategoryLabel_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  []string
	}{
		{"канонический id", "landing_gear", []string{"landing_gear"}},
		{"английский термин", "Landing Gear", []string{"landing_gear"}},
		{"испанская метка", "Tren de Aterrizaje", []string{"landing_gear"}},
		{"короткий код", "HYD", []string{"hydraulics"}},
		{"составная метка", "ice and fire", []string{"anti_ice", "fire_protection"}},
		{"неизвестная метка остается подстрокой", "  Crew Resource ", []string{"crew resource"}},
		{"пустая метка", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCategoryLabel(tt.label))
		})
	}
}

func TestCategoryMatches(t *testing.T) {
	tests := []struct {
		name     string
		matcher  string
		category string
		want     bool
	}{
		{"точное совпадение id", "electrical", "Electrical", true},
		{"термин внутри категории", "electrical", "Electrical Power Generation", true},
		{"категория внутри термина", "hydraulics", "Hydraulic", true},
		{"испанский псевдоним", "fuel", "Sistema de combustible", true},
		{"общая категория", CategoryAircraftGeneral, "Aircraft General", true},
		{"другая категория", "electrical", "Hydraulics", false},
		{"короткий код не сравнивается подстрокой", "communications", "combustible", false},
		{"буквальная подстрока", "crew", "Crew Resource Management", true},
		{"буквальная подстрока не найдена", "nonexistent-category", "Electrical", false},
		{"пустая категория вопроса", "electrical", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryMatches(tt.matcher, tt.category))
		})
	}
}

func TestCanonicalCategories_Consistent(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range CanonicalCategories() {
		assert.False(t, seen[c.ID], "Дубликат категории %s", c.ID)
		seen[c.ID] = true
		assert.True(t, IsCanonicalCategory(c.ID))
		assert.Equal(t, []string{c.ID}, ResolveCategoryLabel(c.ID), "Id категории разрешается сам в себя")
	}
	for label, ids := range compoundAliases {
		for _, id := range ids {
			assert.True(t, IsCanonicalCategory(id), "Составная метка %q ссылается на неизвестную категорию %s", label, id)
		}
	}
}
