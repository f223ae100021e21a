package examengine

import (
	"sort"
	"strings"
)

// CategoryAircraftGeneral: каноническая категория общих сведений о ВС,
// используется на последней ступени отбора перед нефильтрованным пулом.
const CategoryAircraftGeneral = "aircraft_general"

// CanonicalCategory: каноническая категория и строки, с которыми она сопоставляется.
// Terms сравниваются с категорией вопроса подстрокой в обе стороны без учета регистра.
// Aliases: испанские и устаревшие метки: разрешаются в категорию и тоже участвуют в сравнении.
// Codes: короткие коды, которые принимаются на входе, но не сравниваются подстрокой.
type CanonicalCategory struct {
	ID      string
	Terms   []string
	Aliases []string
	Codes   []string
}

// Единая таблица канонических категорий.
var canonicalCategories = []CanonicalCategory{
	{
		ID:      CategoryAircraftGeneral,
		Terms:   []string{"aircraft general", "general"},
		Aliases: []string{"generalidades", "generalidades de la aeronave", "general aircraft", "airplane general"},
	},
	{
		ID:      "air_conditioning",
		Terms:   []string{"air conditioning", "pressurization", "pressurisation", "ventilation"},
		Aliases: []string{"aire acondicionado", "presurización", "presurizacion"},
		Codes:   []string{"ac_press", "air cond"},
	},
	{
		ID:      "anti_ice",
		Terms:   []string{"anti-ice", "anti ice", "ice and rain", "ice & rain", "ice protection"},
		Aliases: []string{"antihielo", "hielo y lluvia", "protección contra hielo"},
		Codes:   []string{"ice_rain"},
	},
	{
		ID:      "autoflight",
		Terms:   []string{"autoflight", "auto flight", "autopilot", "flight management", "fmgs", "fms"},
		Aliases: []string{"piloto automático", "piloto automatico", "vuelo automático", "vuelo automatico"},
		Codes:   []string{"afs"},
	},
	{
		ID:      "communications",
		Terms:   []string{"communication", "radio"},
		Aliases: []string{"comunicaciones"},
		Codes:   []string{"comms", "com"},
	},
	{
		ID:      "electrical",
		Terms:   []string{"electrical", "electric"},
		Aliases: []string{"eléctrico", "electrico", "sistema eléctrico", "sistema electrico"},
		Codes:   []string{"elec"},
	},
	{
		ID:      "emergency",
		Terms:   []string{"emergency", "evacuation", "oxygen"},
		Aliases: []string{"emergencia", "emergencias", "equipo de emergencia", "oxígeno"},
		Codes:   []string{"emer"},
	},
	{
		ID:      "fire_protection",
		Terms:   []string{"fire", "smoke"},
		Aliases: []string{"protección contra incendios", "proteccion contra incendios", "incendio", "fuego"},
	},
	{
		ID:      "flight_controls",
		Terms:   []string{"flight control", "flight controls"},
		Aliases: []string{"controles de vuelo", "mandos de vuelo"},
		Codes:   []string{"f_ctl", "flt ctl"},
	},
	{
		ID:      "fuel",
		Terms:   []string{"fuel"},
		Aliases: []string{"combustible"},
	},
	{
		ID:      "hydraulics",
		Terms:   []string{"hydraulic"},
		Aliases: []string{"hidráulico", "hidraulico", "hidráulica", "hidraulica"},
		Codes:   []string{"hyd"},
	},
	{
		ID:      "landing_gear",
		Terms:   []string{"landing gear", "gear", "brakes"},
		Aliases: []string{"tren de aterrizaje", "frenos"},
		Codes:   []string{"ldg gear", "ldg_gear"},
	},
	{
		ID:      "navigation",
		Terms:   []string{"navigation", "instruments"},
		Aliases: []string{"navegación", "navegacion", "instrumentos"},
		Codes:   []string{"nav"},
	},
	{
		ID:      "pneumatics",
		Terms:   []string{"pneumatic", "bleed air"},
		Aliases: []string{"neumático", "neumatico", "neumática", "neumatica"},
		Codes:   []string{"pneu"},
	},
	{
		ID:      "powerplant",
		Terms:   []string{"powerplant", "power plant", "engine", "apu"},
		Aliases: []string{"motores", "motor", "planta motriz"},
		Codes:   []string{"eng"},
	},
	{
		ID:      "performance",
		Terms:   []string{"performance", "limitations", "weight and balance"},
		Aliases: []string{"rendimiento", "limitaciones", "peso y balance"},
		Codes:   []string{"perf"},
	},
	{
		ID:      "procedures",
		Terms:   []string{"procedure", "checklist"},
		Aliases: []string{"procedimientos", "procedimientos normales", "procedimientos anormales"},
		Codes:   []string{"sop"},
	},
	{
		ID:      "meteorology",
		Terms:   []string{"meteorology", "weather"},
		Aliases: []string{"meteorología", "meteorologia"},
		Codes:   []string{"wx"},
	},
}

// Составные метки, разрешающиеся сразу в несколько канонических категорий
var compoundAliases = map[string][]string{
	"air systems":                  {"air_conditioning", "pneumatics"},
	"sistemas de aire":             {"air_conditioning", "pneumatics"},
	"emergency procedures":         {"emergency", "procedures"},
	"procedimientos de emergencia": {"emergency", "procedures"},
	"ice and fire":                 {"anti_ice", "fire_protection"},
	"engines and fuel":             {"powerplant", "fuel"},
	"motores y combustible":        {"powerplant", "fuel"},
	"systems":                      {"air_conditioning", "electrical", "fuel", "hydraulics", "pneumatics", "landing_gear", "flight_controls"},
	"sistemas":                     {"air_conditioning", "electrical", "fuel", "hydraulics", "pneumatics", "landing_gear", "flight_controls"},
}

var (
	categoriesByID map[string]*CanonicalCategory
	aliasIndex     map[string][]string
)

func init() {
	categoriesByID = make(map[string]*CanonicalCategory, len(canonicalCategories))
	aliasIndex = make(map[string][]string)

	for i := range canonicalCategories {
		c := &canonicalCategories[i]
		categoriesByID[c.ID] = c
		for _, group := range [][]string{c.Terms, c.Aliases, c.Codes} {
			for _, label := range group {
				addAlias(label, c.ID)
			}
		}
	}
	for label, ids := range compoundAliases {
		for _, id := range ids {
			addAlias(label, id)
		}
	}
}

func addAlias(label, id string) {
	key := strings.ToLower(strings.TrimSpace(label))
	for _, existing := range aliasIndex[key] {
		if existing == id {
			return
		}
	}
	aliasIndex[key] = append(aliasIndex[key], id)
	sort.Strings(aliasIndex[key])
}

// IsCanonicalCategory сообщает, является ли id канонической категорией
func IsCanonicalCategory(id string) bool {
	_, ok := categoriesByID[id]
	return ok
}

// CanonicalCategories возвращает копию таблицы категорий
func CanonicalCategories() []CanonicalCategory {
	out := make([]CanonicalCategory, len(canonicalCategories))
	copy(out, canonicalCategories)
	return out
}

// ResolveCategoryLabel разрешает входную метку.
// Порядок: точный канонический id, затем таблица псевдонимов, иначе метка остается буквальной подстрокой.
// Возвращает канонические id либо саму метку, если сопоставления нет.
func ResolveCategoryLabel(label string) []string {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return nil
	}
	if IsCanonicalCategory(key) {
		return []string{key}
	}
	if ids, ok := aliasIndex[key]; ok {
		out := make([]string, len(ids))
		copy(out, ids)
		return out
	}
	return []string{key}
}

// CategoryMatches проверяет, подходит ли категория вопроса под элемент нормализованного набора.
// Для канонического id сравниваются все его термины и псевдонимы, для буквальной метки, она сама.
func CategoryMatches(matcher, questionCategory string) bool {
	qc := strings.ToLower(strings.TrimSpace(questionCategory))
	if qc == "" {
		return false
	}
	c, ok := categoriesByID[matcher]
	if !ok {
		return containsEither(qc, matcher)
	}
	if containsEither(qc, strings.ReplaceAll(c.ID, "_", " ")) {
		return true
	}
	for _, term := range c.Terms {
		if containsEither(qc, term) {
			return true
		}
	}
	for _, alias := range c.Aliases {
		if containsEither(qc, alias) {
			return true
		}
	}
	return false
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
