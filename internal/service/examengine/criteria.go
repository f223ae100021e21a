package examengine

import (
	"sort"
	"strings"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// Сигнальные значения "без фильтра"
const (
	AircraftAll   = "ALL"
	DifficultyAll = "all"
)

// Поддерживаемые типы ВС
var knownAircraft = map[string]bool{
	"A320_FAMILY":    true,
	"B737_FAMILY":    true,
	"A330":           true,
	"B777":           true,
	"B787":           true,
	"ATR_72":         true,
	"EMBRAER_E_JETS": true,
}

// Распространенные написания типов ВС
var aircraftAliases = map[string]string{
	"A320":     "A320_FAMILY",
	"A319":     "A320_FAMILY",
	"A321":     "A320_FAMILY",
	"A320NEO":  "A320_FAMILY",
	"B737":     "B737_FAMILY",
	"737":      "B737_FAMILY",
	"B737MAX":  "B737_FAMILY",
	"B737_MAX": "B737_FAMILY",
	"ATR72":    "ATR_72",
	"ATR":      "ATR_72",
	"E190":     "EMBRAER_E_JETS",
	"E195":     "EMBRAER_E_JETS",
	"E_JETS":   "EMBRAER_E_JETS",
	"EMBRAER":  "EMBRAER_E_JETS",
}

var difficultyAliases = map[string]entity.Difficulty{
	"easy":       entity.DifficultyBasic,
	"beginner":   entity.DifficultyBasic,
	"basico":     entity.DifficultyBasic,
	"básico":     entity.DifficultyBasic,
	"medium":     entity.DifficultyIntermediate,
	"intermedio": entity.DifficultyIntermediate,
	"hard":       entity.DifficultyAdvanced,
	"expert":     entity.DifficultyAdvanced,
	"avanzado":   entity.DifficultyAdvanced,
}

// IsKnownAircraft сообщает, входит ли тип в поддерживаемый набор
func IsKnownAircraft(aircraft string) bool {
	return knownAircraft[aircraft]
}

// KnownAircraft возвращает поддерживаемые типы ВС в алфавитном порядке
func KnownAircraft() []string {
	out := make([]string, 0, len(knownAircraft))
	for a := range knownAircraft {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// RawCriteria: критерии в том виде, в каком они пришли от клиента
type RawCriteria struct {
	Mode       string `json:"mode"`
	Category   string `json:"category"`
	Aircraft   string `json:"aircraft"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
	UserID     string `json:"user_id,omitempty"`
	ExamID     uint   `json:"exam_id,omitempty"`
}

// Criteria: нормализованные критерии отбора
type Criteria struct {
	Mode entity.SessionMode
	// Categories: отсортированный набор канонических id и буквальных подстрок
	Categories []string
	Aircraft   string
	Difficulty string
	Count      int
	UserID     string
	ExamID     uint
}

// Raw возвращает критерии в сыром виде; повторная нормализация дает то же значение
func (c Criteria) Raw() RawCriteria {
	return RawCriteria{
		Mode:       string(c.Mode),
		Category:   strings.Join(c.Categories, ","),
		Aircraft:   c.Aircraft,
		Difficulty: c.Difficulty,
		Count:      c.Count,
		UserID:     c.UserID,
		ExamID:     c.ExamID,
	}
}

// MatchesAircraft: вопрос подходит, если тип совпадает или вопрос общий
func (c Criteria) MatchesAircraft(q *entity.Question) bool {
	if c.Aircraft == "" || c.Aircraft == AircraftAll {
		return true
	}
	return q.Aircraft == c.Aircraft || q.IsGeneral()
}

// MatchesCategory: вопрос подходит хотя бы под одну категорию набора; пустой набор не ограничивает
func (c Criteria) MatchesCategory(q *entity.Question) bool {
	if len(c.Categories) == 0 {
		return true
	}
	for _, m := range c.Categories {
		if CategoryMatches(m, q.Category) {
			return true
		}
	}
	return false
}

// MatchesDifficulty: "all" не ограничивает
func (c Criteria) MatchesDifficulty(q *entity.Question) bool {
	if c.Difficulty == "" || c.Difficulty == DifficultyAll {
		return true
	}
	return string(q.Difficulty) == c.Difficulty
}

// CriteriaNormalizer приводит сырые критерии к каноническому виду
type CriteriaNormalizer struct {
	defaultCount int
	maxCount     int
}

// NewCriteriaNormalizer создает нормализатор с границами количества вопросов из конфигурации
func NewCriteriaNormalizer(cfg *Config) *CriteriaNormalizer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	n := &CriteriaNormalizer{defaultCount: cfg.DefaultCount, maxCount: cfg.MaxCount}
	if n.maxCount <= 0 || n.maxCount > MaxQuestionCount {
		n.maxCount = MaxQuestionCount
	}
	if n.defaultCount <= 0 {
		n.defaultCount = DefaultQuestionCount
	}
	if n.defaultCount > n.maxCount {
		n.defaultCount = n.maxCount
	}
	return n
}

// Normalize нормализует критерии с настройками по умолчанию
func Normalize(raw RawCriteria) Criteria {
	return NewCriteriaNormalizer(nil).Normalize(raw)
}

// Normalize: чистая детерминированная функция без побочных эффектов
func (n *CriteriaNormalizer) Normalize(raw RawCriteria) Criteria {
	return Criteria{
		Mode:       normalizeMode(raw.Mode),
		Categories: normalizeCategories(raw.Category),
		Aircraft:   NormalizeAircraft(raw.Aircraft),
		Difficulty: normalizeDifficultyFilter(raw.Difficulty),
		Count:      n.clampCount(raw.Count),
		UserID:     strings.TrimSpace(raw.UserID),
		ExamID:     raw.ExamID,
	}
}

func (n *CriteriaNormalizer) clampCount(count int) int {
	switch {
	case count == 0:
		return n.defaultCount
	case count < 1:
		return 1
	case count > n.maxCount:
		return n.maxCount
	}
	return count
}

func normalizeMode(mode string) entity.SessionMode {
	m := entity.SessionMode(strings.ToLower(strings.TrimSpace(mode)))
	if !m.Valid() {
		return entity.ModePractice
	}
	return m
}

func normalizeCategories(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, label := range strings.Split(raw, ",") {
		for _, resolved := range ResolveCategoryLabel(label) {
			if !seen[resolved] {
				seen[resolved] = true
				out = append(out, resolved)
			}
		}
	}
	sort.Strings(out)
	return out
}

// NormalizeAircraft приводит тип ВС к верхнему регистру и разворачивает известные написания.
// Пустое значение означает "все типы".
func NormalizeAircraft(raw string) string {
	a := strings.ToUpper(strings.TrimSpace(raw))
	a = strings.NewReplacer(" ", "_", "-", "_").Replace(a)
	if a == "" {
		return AircraftAll
	}
	if canonical, ok := aircraftAliases[a]; ok {
		return canonical
	}
	return a
}

func normalizeDifficultyFilter(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	if d == "" {
		return DifficultyAll
	}
	if canonical, ok := difficultyAliases[d]; ok {
		return string(canonical)
	}
	return d
}
