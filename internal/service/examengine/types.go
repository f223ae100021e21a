package examengine

import (
	"context"
	"log"
	"time"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// Значения по умолчанию
const (
	DefaultQuestionCount        = 20
	MaxQuestionCount            = 100
	DefaultCacheTTL             = 5 * time.Minute
	DefaultTimedSecondsPerQ     = 90
	DefaultMinimalSetLimit      = 10
	DefaultRemoteLimit          = 5000
	DefaultRemoteTimeout        = 4 * time.Second
	DefaultSnapshotTTL          = 24 * time.Hour
	DefaultSideEffectTimeout    = 10 * time.Second
	DefaultTickInterval         = time.Second
	DefaultPassingScorePercents = 75
)

// Config содержит настройки движка экзаменов
type Config struct {
	// Кеш банка вопросов
	CacheTTL time.Duration

	// Источники
	RemoteTimeout   time.Duration // Ограничение на запрос к PostgreSQL
	RemoteLimit     int           // Максимум вопросов из PostgreSQL
	MinimalSetLimit int           // Размер последнего резервного набора
	SnapshotTTL     time.Duration // Время жизни снимка в Redis

	// Критерии
	DefaultCount int
	MaxCount     int

	// Сессии
	DefaultPassingScore     int
	TimedSecondsPerQuestion int // Лимит на вопрос для timed-сессий без экзамена
	TickInterval            time.Duration
	SideEffectTimeout       time.Duration

	// RandomSeed фиксирует порядок перемешивания; 0, seed от текущего времени
	RandomSeed int64
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		CacheTTL:                DefaultCacheTTL,
		RemoteTimeout:           DefaultRemoteTimeout,
		RemoteLimit:             DefaultRemoteLimit,
		MinimalSetLimit:         DefaultMinimalSetLimit,
		SnapshotTTL:             DefaultSnapshotTTL,
		DefaultCount:            DefaultQuestionCount,
		MaxCount:                MaxQuestionCount,
		DefaultPassingScore:     DefaultPassingScorePercents,
		TimedSecondsPerQuestion: DefaultTimedSecondsPerQ,
		TickInterval:            DefaultTickInterval,
		SideEffectTimeout:       DefaultSideEffectTimeout,
	}
}

// Clock отдает текущее время; подменяется в тестах
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock возвращает часы на основе time.Now
func SystemClock() Clock { return systemClock{} }

// Dispatcher выполняет фоновые побочные действия (запись журнала, сохранение итогов).
// Ошибки таких действий логируются и не влияют на вызывающего.
type Dispatcher interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context))
}

// AsyncDispatcher запускает действие в отдельной горутине с таймаутом
type AsyncDispatcher struct {
	Timeout time.Duration
}

// Go запускает fn в горутине. Контекст вызывающего не отменяет действие.
func (d AsyncDispatcher) Go(ctx context.Context, name string, fn func(ctx context.Context)) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultSideEffectTimeout
	}
	go func() {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Dispatcher] ERROR: panic in %s: %v", name, r)
			}
		}()
		fn(runCtx)
	}()
}

// InlineDispatcher выполняет действие синхронно (CLI и тесты)
type InlineDispatcher struct{}

// Go выполняет fn в текущей горутине
func (InlineDispatcher) Go(ctx context.Context, name string, fn func(ctx context.Context)) {
	fn(ctx)
}

// MissRecorder принимает записи об ошибках и итоги сессий для журнала ошибок
type MissRecorder interface {
	RecordMiss(ctx context.Context, userID string, q *entity.Question, selected int) error
	Apply(ctx context.Context, userID string, mode entity.SessionMode, answers []entity.Answer, questions []entity.Question) LedgerReport
}

// SessionRecorder сохраняет записи о старте и завершении сессий
type SessionRecorder interface {
	RecordStart(ctx context.Context, info SessionInfo) error
	RecordCompletion(ctx context.Context, info SessionInfo, answers []entity.Answer, result *entity.SessionResult) error
}

// AnswerStats накапливает статистику ответов по вопросам
type AnswerStats interface {
	RecordAnswers(ctx context.Context, answers []entity.Answer)
}

// Dependencies содержит зависимости сессий. Пустые поля отключают соответствующие побочные действия.
type Dependencies struct {
	Ledger     MissRecorder
	Recorder   SessionRecorder
	Stats      AnswerStats
	Dispatcher Dispatcher
	Clock      Clock
	Config     *Config
}

func (d *Dependencies) withDefaults() *Dependencies {
	out := Dependencies{}
	if d != nil {
		out = *d
	}
	if out.Dispatcher == nil {
		out.Dispatcher = AsyncDispatcher{}
	}
	if out.Clock == nil {
		out.Clock = SystemClock()
	}
	if out.Config == nil {
		out.Config = DefaultConfig()
	}
	return &out
}
