// Package bundled содержит встроенные наборы вопросов, которые используются,
// когда хранилище и снимок недоступны, и при начальном заполнении базы.
package bundled

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
)

//go:embed sets/*.json
var setFiles embed.FS

//go:embed minimal.json
var minimalJSON []byte

//go:embed question_set.schema.json
var schemaJSON []byte

const schemaURL = "schema://question_set.json"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// QuestionSet: встроенный набор вопросов.
// Aircraft набора применяется к вопросам, у которых тип ВС не указан.
type QuestionSet struct {
	Name      string                   `json:"name"`
	Aircraft  string                   `json:"aircraft"`
	Questions []examengine.RawQuestion `json:"questions"`
}

func setSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var parsed any
		if err := json.Unmarshal(schemaJSON, &parsed); err != nil {
			compileErr = fmt.Errorf("parse question set schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, parsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// ParseSet проверяет набор по JSON-схеме и разбирает его
func ParseSet(name string, data []byte) (*QuestionSet, error) {
	schema, err := setSchema()
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: set %s: invalid JSON: %v", apperrors.ErrValidation, name, err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: set %s: %v", apperrors.ErrValidation, name, err)
	}

	var set QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode set %s: %w", name, err)
	}
	for i := range set.Questions {
		q := &set.Questions[i]
		if q.Aircraft == "" && q.AircraftType == "" {
			q.Aircraft = set.Aircraft
		}
	}
	return &set, nil
}

// StandardSets возвращает все встроенные наборы в порядке имен файлов
func StandardSets() ([]QuestionSet, error) {
	entries, err := setFiles.ReadDir("sets")
	if err != nil {
		return nil, fmt.Errorf("read bundled sets: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	sets := make([]QuestionSet, 0, len(names))
	for _, name := range names {
		data, err := setFiles.ReadFile(path.Join("sets", name))
		if err != nil {
			return nil, fmt.Errorf("read bundled set %s: %w", name, err)
		}
		set, err := ParseSet(name, data)
		if err != nil {
			return nil, err
		}
		sets = append(sets, *set)
	}
	return sets, nil
}

// MinimalSet возвращает последний резервный набор
func MinimalSet() (*QuestionSet, error) {
	return ParseSet("minimal.json", minimalJSON)
}

// NewSources создает источники static и minimal для цепочки банка вопросов
func NewSources(minimalLimit int) (*examengine.StaticSource, *examengine.StaticSource, error) {
	sets, err := StandardSets()
	if err != nil {
		return nil, nil, err
	}
	records := make([][]examengine.RawQuestion, 0, len(sets))
	for _, s := range sets {
		records = append(records, s.Questions)
	}

	minimal, err := MinimalSet()
	if err != nil {
		return nil, nil, err
	}
	return examengine.NewStaticSource(records...), examengine.NewMinimalSource(minimal.Questions, minimalLimit), nil
}
