package examengine

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// Ступени отбора
const (
	StageStrict          = "strict"
	StageAircraftRelaxed = "aircraft_relaxed"
	StageCategoryRelaxed = "category_relaxed"
	StageAircraftGeneral = "aircraft_general"
	StageUnfiltered      = "unfiltered"
)

// LedgerReader отдает вопросы, на которые пользователь ответил неверно и еще не разобрал
type LedgerReader interface {
	UnresolvedQuestionIDs(ctx context.Context, userID string) ([]string, error)
}

// Selection: результат отбора
type Selection struct {
	Questions []entity.Question
	Stage     string
	// PoolSize: размер набора после фильтрации, до усечения
	PoolSize int
	// FromLedger: вопросы взяты из журнала ошибок
	FromLedger bool
}

// Selector отбирает вопросы для сессии по ступеням с постепенным ослаблением фильтров
type Selector struct {
	mu     sync.Mutex
	rng    *rand.Rand
	ledger LedgerReader
}

// NewSeededRand создает генератор; seed 0, от текущего времени
func NewSeededRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// NewSelector создает селектор. ledger может быть nil, тогда режим review отбирает из всего банка.
func NewSelector(rng *rand.Rand, ledger LedgerReader) *Selector {
	if rng == nil {
		rng = NewSeededRand(0)
	}
	return &Selector{rng: rng, ledger: ledger}
}

// Select применяет ступени отбора, перемешивает результат и усекает до criteria.Count.
// Если банк не пуст, результат не пуст.
func (s *Selector) Select(questions []entity.Question, criteria Criteria) Selection {
	stage, pool := filterChain(questions, criteria)
	return s.finish(stage, pool, criteria.Count, false)
}

// SelectForUser учитывает режим review: набор ограничивается неразобранными ошибками пользователя.
// Если таких нет, используется общая цепочка по всему банку.
func (s *Selector) SelectForUser(ctx context.Context, questions []entity.Question, criteria Criteria) Selection {
	if criteria.Mode != entity.ModeReview || criteria.UserID == "" || s.ledger == nil {
		return s.Select(questions, criteria)
	}

	ids, err := s.ledger.UnresolvedQuestionIDs(ctx, criteria.UserID)
	if err != nil {
		log.Printf("[Selector] WARNING: журнал ошибок пользователя %s недоступен: %v", criteria.UserID, err)
		return s.Select(questions, criteria)
	}

	missed := make(map[string]bool, len(ids))
	for _, id := range ids {
		missed[id] = true
	}
	var pool []entity.Question
	for _, q := range questions {
		if missed[q.ID] {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		log.Printf("[Selector] У пользователя %s нет неразобранных ошибок в банке, используем общий отбор", criteria.UserID)
		return s.Select(questions, criteria)
	}

	stage, filtered := filterChain(pool, criteria)
	return s.finish(stage, filtered, criteria.Count, true)
}

func (s *Selector) finish(stage string, pool []entity.Question, count int, fromLedger bool) Selection {
	out := make([]entity.Question, len(pool))
	copy(out, pool)

	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()

	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return Selection{Questions: out, Stage: stage, PoolSize: len(pool), FromLedger: fromLedger}
}

// filterChain выполняет ступени по порядку, пока одна из них не даст непустой результат
func filterChain(questions []entity.Question, c Criteria) (string, []entity.Question) {
	stages := []struct {
		name  string
		match func(q *entity.Question) bool
	}{
		{StageStrict, func(q *entity.Question) bool {
			return c.MatchesAircraft(q) && c.MatchesCategory(q) && c.MatchesDifficulty(q)
		}},
		{StageAircraftRelaxed, func(q *entity.Question) bool {
			return c.MatchesCategory(q) && c.MatchesDifficulty(q)
		}},
		{StageCategoryRelaxed, func(q *entity.Question) bool {
			return c.MatchesAircraft(q) && c.MatchesDifficulty(q)
		}},
		{StageAircraftGeneral, func(q *entity.Question) bool {
			return CategoryMatches(CategoryAircraftGeneral, q.Category)
		}},
	}

	for _, st := range stages {
		var matched []entity.Question
		for i := range questions {
			if st.match(&questions[i]) {
				matched = append(matched, questions[i])
			}
		}
		if len(matched) > 0 {
			if st.name != StageStrict {
				log.Printf("[Selector] Строгий фильтр пуст, использована ступень %s (%d вопросов)", st.name, len(matched))
			}
			return st.name, matched
		}
	}
	return StageUnfiltered, questions
}
