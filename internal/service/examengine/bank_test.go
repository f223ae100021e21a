package examengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
)

// ============================================================================
// TTLCache
// ============================================================================

func TestTTLCache_ExpiresAfterTTL(t *testing.T) {
	clock := newFakeClock()
	cache := NewTTLCache(5*time.Minute, clock)

	_, ok := cache.Get()
	assert.False(t, ok, "Пустой кеш: промах")

	cache.Set(makeBank(2, "Fuel", "B777"), entity.SourceRemote)
	items, ok := cache.Get()
	require.True(t, ok)
	assert.Len(t, items, 2)

	clock.Advance(4*time.Minute + 59*time.Second)
	_, ok = cache.Get()
	assert.True(t, ok, "До истечения TTL кеш действителен")

	clock.Advance(time.Second)
	_, ok = cache.Get()
	assert.False(t, ok, "По истечении TTL кеш недействителен")
	assert.False(t, cache.State().Valid)
}

func TestTTLCache_Invalidate(t *testing.T) {
	cache := NewTTLCache(time.Minute, newFakeClock())
	cache.Set(makeBank(1, "Fuel", "B777"), entity.SourceStatic)

	cache.Invalidate()

	_, ok := cache.Get()
	assert.False(t, ok)
	assert.Equal(t, 0, cache.State().Count)
}

// ============================================================================
// QuestionBank
// ============================================================================

func newTestBank(clock Clock, snapshot SnapshotStore, sources ...Source) *QuestionBank {
	return NewQuestionBank(sources, BankOptions{
		Config:     DefaultConfig(),
		Clock:      clock,
		Snapshot:   snapshot,
		Dispatcher: InlineDispatcher{},
	})
}

func TestQuestionBank_RemoteFirst(t *testing.T) {
	remote := &stubSource{name: entity.SourceRemote, questions: makeBank(3, "Fuel", "B777")}
	static := &stubSource{name: entity.SourceStatic, questions: makeBank(5, "Fuel", "A330")}
	snapshot := &recordingSnapshot{}
	bank := newTestBank(newFakeClock(), snapshot, remote, static)

	got := bank.GetAllQuestions(context.Background())

	assert.Len(t, got, 3)
	assert.Equal(t, 0, static.calls, "Следующий уровень не опрашивается при удачном ответе")
	assert.Len(t, snapshot.stored, 1, "Удачный ответ хранилища сохраняется в снимок")
	assert.Equal(t, entity.SourceRemote, bank.State().Source)
}

func TestQuestionBank_FallsThroughOnErrorAndEmpty(t *testing.T) {
	remote := &stubSource{name: entity.SourceRemote, err: errors.New("connection refused")}
	snap := &stubSource{name: entity.SourceSnapshot}
	static := &stubSource{name: entity.SourceStatic, questions: makeBank(4, "Electrical", "A320_FAMILY")}
	snapshot := &recordingSnapshot{}
	bank := newTestBank(newFakeClock(), snapshot, remote, snap, static)

	got := bank.GetAllQuestions(context.Background())

	assert.Len(t, got, 4)
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, 1, snap.calls)
	assert.Empty(t, snapshot.stored, "Снимок обновляется только из хранилища")
	assert.Equal(t, entity.SourceStatic, bank.State().Source)
}

func TestQuestionBank_DropsInvalidAndInactive(t *testing.T) {
	qs := makeBank(3, "Fuel", "B777")
	qs[0].IsActive = false
	qs[1].CorrectAnswer = 7
	remote := &stubSource{name: entity.SourceRemote, questions: qs}
	bank := newTestBank(newFakeClock(), nil, remote)

	got := bank.GetAllQuestions(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, qs[2].ID, got[0].ID)
}

func TestQuestionBank_CachesWithinTTL(t *testing.T) {
	clock := newFakeClock()
	remote := &stubSource{name: entity.SourceRemote, questions: makeBank(2, "Fuel", "B777")}
	bank := newTestBank(clock, nil, remote)
	ctx := context.Background()

	bank.GetAllQuestions(ctx)
	bank.GetAllQuestions(ctx)
	assert.Equal(t, 1, remote.calls, "Повторный вызов обслуживается из кеша")

	clock.Advance(DefaultCacheTTL)
	bank.GetAllQuestions(ctx)
	assert.Equal(t, 2, remote.calls, "После истечения TTL источник опрашивается снова")

	bank.Invalidate()
	bank.GetAllQuestions(ctx)
	assert.Equal(t, 3, remote.calls, "После сброса кеша источник опрашивается снова")
}

func TestQuestionBank_AllSourcesExhausted(t *testing.T) {
	remote := &stubSource{name: entity.SourceRemote, err: errors.New("timeout")}
	minimal := &stubSource{name: entity.SourceMinimal}
	bank := newTestBank(newFakeClock(), nil, remote, minimal)

	got := bank.GetAllQuestions(context.Background())
	assert.Empty(t, got)

	bank.GetAllQuestions(context.Background())
	assert.Equal(t, 2, remote.calls, "Пустой результат не кешируется")
}

// ============================================================================
// Источники
// ============================================================================

func TestRemoteSource_PassesLimit(t *testing.T) {
	repo := new(MockQuestionRepo)
	repo.On("Find", mock.Anything, repository.QuestionFilter{Limit: 50}).
		Return(makeBank(2, "Fuel", "B777"), nil)

	src := NewRemoteSource(repo, time.Second)
	got, err := src.FetchQuestions(context.Background(), SourceFilter{Limit: 50})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}

func TestRemoteSource_WrapsError(t *testing.T) {
	repo := new(MockQuestionRepo)
	repo.On("Find", mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	_, err := NewRemoteSource(repo, time.Second).FetchQuestions(context.Background(), SourceFilter{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSnapshotSource_MissingSnapshotIsEmpty(t *testing.T) {
	cache := new(MockCacheRepo)
	cache.On("GetJSON", mock.Anything, SnapshotKey, mock.Anything).Return(apperrors.ErrNotFound)

	got, err := NewSnapshotSource(cache, time.Hour).FetchQuestions(context.Background(), SourceFilter{})

	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestSnapshotSource_Store(t *testing.T) {
	cache := new(MockCacheRepo)
	qs := makeBank(2, "Fuel", "B777")
	cache.On("SetJSON", mock.Anything, SnapshotKey, qs, time.Hour).Return(nil)

	err := NewSnapshotSource(cache, time.Hour).Store(context.Background(), qs)

	assert.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestStaticSource_NormalizesAndDrops(t *testing.T) {
	records := []RawQuestion{
		{ID: "s1", Text: "One", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: intPtr(0), Category: "Fuel"},
		{ID: "s2", Text: "Broken", Options: []string{"a"}, CorrectAnswer: intPtr(0)},
	}
	more := []RawQuestion{
		{ID: "s3", Text: "Three", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: intPtr(2)},
	}

	got, err := NewStaticSource(records, more).FetchQuestions(context.Background(), SourceFilter{})

	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3"}, questionIDs(got))
}

func TestMinimalSource_Truncates(t *testing.T) {
	var records []RawQuestion
	for _, id := range []string{"m1", "m2", "m3", "m4"} {
		records = append(records, RawQuestion{ID: id, Text: id, Options: []string{"a", "b", "c", "d"}, CorrectAnswer: intPtr(1)})
	}

	src := NewMinimalSource(records, 2)
	got, err := src.FetchQuestions(context.Background(), SourceFilter{})

	require.NoError(t, err)
	assert.Equal(t, entity.SourceMinimal, src.Name())
	assert.Equal(t, []string{"m1", "m2"}, questionIDs(got))
}
