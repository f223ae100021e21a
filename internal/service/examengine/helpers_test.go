package examengine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
)

// ============================================================================
// Часы и фабрики тестовых данных
// ============================================================================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func makeQuestion(id, category, aircraft string, difficulty entity.Difficulty) entity.Question {
	return entity.Question{
		ID:            id,
		Text:          "Question " + id,
		Options:       entity.StringArray{"A", "B", "C", "D"},
		CorrectAnswer: 1,
		Explanation:   "Explanation " + id,
		Aircraft:      aircraft,
		Category:      category,
		Difficulty:    difficulty,
		IsActive:      true,
	}
}

func makeBank(n int, category, aircraft string) []entity.Question {
	out := make([]entity.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, makeQuestion(fmt.Sprintf("%s-%s-%d", aircraft, category, i), category, aircraft, entity.DifficultyIntermediate))
	}
	return out
}

func questionIDs(qs []entity.Question) []string {
	ids := make([]string, len(qs))
	for i := range qs {
		ids[i] = qs[i].ID
	}
	return ids
}

func intPtr(v int) *int { return &v }

// ============================================================================
// Моки
// ============================================================================

// MockQuestionRepo реализует repository.QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(ctx context.Context, q *entity.Question) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuestionRepo) CreateBatch(ctx context.Context, qs []entity.Question) (int64, error) {
	args := m.Called(ctx, qs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepo) GetByID(ctx context.Context, id string) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) Update(ctx context.Context, q *entity.Question) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuestionRepo) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepo) Find(ctx context.Context, filter repository.QuestionFilter) ([]entity.Question, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepo) Increment(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

// MockMissedRepo реализует repository.MissedQuestionRepository
type MockMissedRepo struct {
	mock.Mock
}

func (m *MockMissedRepo) Upsert(ctx context.Context, missed *entity.MissedQuestion) error {
	args := m.Called(ctx, missed)
	return args.Error(0)
}

func (m *MockMissedRepo) Resolve(ctx context.Context, userID string, questionIDs []string, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, questionIDs, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMissedRepo) ListUnresolved(ctx context.Context, userID string) ([]entity.MissedQuestion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MissedQuestion), args.Error(1)
}

func (m *MockMissedRepo) ListByUser(ctx context.Context, userID string, includeResolved bool) ([]entity.MissedQuestion, error) {
	args := m.Called(ctx, userID, includeResolved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.MissedQuestion), args.Error(1)
}

// MockSessionRecorder реализует SessionRecorder
type MockSessionRecorder struct {
	mock.Mock
}

func (m *MockSessionRecorder) RecordStart(ctx context.Context, info SessionInfo) error {
	args := m.Called(ctx, info)
	return args.Error(0)
}

func (m *MockSessionRecorder) RecordCompletion(ctx context.Context, info SessionInfo, answers []entity.Answer, result *entity.SessionResult) error {
	args := m.Called(ctx, info, answers, result)
	return args.Error(0)
}

// ============================================================================
// In-memory журнал ошибок
// ============================================================================

// memMissedRepo хранит журнал в памяти с семантикой upsert по (user, question)
type memMissedRepo struct {
	mu      sync.Mutex
	entries map[string]*entity.MissedQuestion
	upserts int
}

func newMemMissedRepo() *memMissedRepo {
	return &memMissedRepo{entries: make(map[string]*entity.MissedQuestion)}
}

func missedKey(userID, questionID string) string { return userID + "|" + questionID }

func (r *memMissedRepo) Upsert(_ context.Context, missed *entity.MissedQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	key := missedKey(missed.UserID, missed.QuestionID)
	if existing, ok := r.entries[key]; ok {
		existing.MissCount++
		existing.SelectedAnswer = missed.SelectedAnswer
		existing.Resolved = false
		existing.ResolvedAt = nil
		existing.LastMissedAt = missed.LastMissedAt
		return nil
	}
	cp := *missed
	r.entries[key] = &cp
	return nil
}

func (r *memMissedRepo) Resolve(_ context.Context, userID string, questionIDs []string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range questionIDs {
		if e, ok := r.entries[missedKey(userID, id)]; ok && !e.Resolved {
			e.Resolved = true
			resolvedAt := at
			e.ResolvedAt = &resolvedAt
			n++
		}
	}
	return n, nil
}

func (r *memMissedRepo) ListUnresolved(ctx context.Context, userID string) ([]entity.MissedQuestion, error) {
	return r.ListByUser(ctx, userID, false)
}

func (r *memMissedRepo) ListByUser(_ context.Context, userID string, includeResolved bool) ([]entity.MissedQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.MissedQuestion
	for _, e := range r.entries {
		if e.UserID == userID && (includeResolved || !e.Resolved) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r *memMissedRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// ============================================================================
// Источники-заглушки
// ============================================================================

type stubSource struct {
	name      string
	questions []entity.Question
	err       error
	calls     int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchQuestions(_ context.Context, _ SourceFilter) ([]entity.Question, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]entity.Question, len(s.questions))
	copy(out, s.questions)
	return out, nil
}

type recordingSnapshot struct {
	mu     sync.Mutex
	stored [][]entity.Question
}

func (r *recordingSnapshot) Store(_ context.Context, qs []entity.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = append(r.stored, qs)
	return nil
}

type countingStats struct {
	mu      sync.Mutex
	batches [][]entity.Answer
}

func (c *countingStats) RecordAnswers(_ context.Context, answers []entity.Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, answers)
}
