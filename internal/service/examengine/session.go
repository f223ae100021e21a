package examengine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
)

// SessionState: состояние экзаменационной сессии
type SessionState int

const (
	StateNotStarted SessionState = iota
	StateInProgress
	StateCompleted
)

func (s SessionState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// SessionParams: данные для создания сессии
type SessionParams struct {
	UserID    string
	Criteria  Criteria
	Questions []entity.Question
	// Exam может быть nil, тогда используются значения по умолчанию
	Exam *entity.Exam
	// OnComplete вызывается в фоне после завершения сессии, в том числе по таймеру
	OnComplete func(ctx context.Context, info SessionInfo)
}

// Session: машина состояний экзаменационной сессии.
// Все операции сериализуются мьютексом: таймер и запросы пользователя не могут завершить сессию дважды.
type Session struct {
	mu       sync.Mutex
	deps     *Dependencies
	behavior modeBehavior

	id        string
	userID    string
	criteria  Criteria
	exam      *entity.Exam
	questions []entity.Question
	index     map[string]int

	state   SessionState
	current int

	answers  map[string]entity.Answer
	order    []string
	pending  map[string]int
	revealed map[string]bool
	// missRecorded: вопросы, уже попавшие в журнал при подтверждении в режиме practice
	missRecorded map[string]bool

	startedAt    time.Time
	timeLimit    int
	remaining    int
	passingScore int

	result     *entity.SessionResult
	abandoned  bool
	onComplete func(ctx context.Context, info SessionInfo)

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSession создает сессию в состоянии NotStarted
func NewSession(params SessionParams, deps *Dependencies) *Session {
	d := deps.withDefaults()

	questions := make([]entity.Question, len(params.Questions))
	copy(questions, params.Questions)
	index := make(map[string]int, len(questions))
	for i := range questions {
		index[questions[i].ID] = i
	}

	passing := params.Exam.EffectivePassingScore()
	if (params.Exam == nil || params.Exam.PassingScore <= 0) && d.Config.DefaultPassingScore > 0 {
		passing = d.Config.DefaultPassingScore
	}

	userID := params.UserID
	if userID == "" {
		userID = params.Criteria.UserID
	}

	return &Session{
		deps:         d,
		behavior:     behaviorFor(params.Criteria.Mode),
		userID:       userID,
		criteria:     params.Criteria,
		exam:         params.Exam,
		onComplete:   params.OnComplete,
		questions:    questions,
		index:        index,
		state:        StateNotStarted,
		passingScore: passing,
		stop:         make(chan struct{}),
	}
}

// Start переводит сессию в InProgress. Уведомление о старте отправляется в фоне,
// его сбой не влияет на переход.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateNotStarted {
		s.mu.Unlock()
		return fmt.Errorf("%w: start from %s", apperrors.ErrInvalidTransition, s.state)
	}
	if len(s.questions) == 0 {
		s.mu.Unlock()
		return apperrors.ErrNoQuestions
	}

	s.id = uuid.New().String()
	s.startedAt = s.deps.Clock.Now()
	s.current = 0
	s.answers = make(map[string]entity.Answer, len(s.questions))
	s.order = nil
	s.pending = make(map[string]int)
	s.revealed = make(map[string]bool)
	s.missRecorded = make(map[string]bool)
	s.timeLimit = s.behavior.timeLimit(s.exam, len(s.questions), s.deps.Config)
	s.remaining = s.timeLimit
	s.state = StateInProgress
	info := s.infoLocked()
	s.mu.Unlock()

	log.Printf("[Session] Сессия %s начата: пользователь %s, режим %s, вопросов %d, лимит %d сек",
		info.ID, info.UserID, info.Mode, len(info.QuestionIDs), s.timeLimit)

	if recorder := s.deps.Recorder; recorder != nil {
		s.deps.Dispatcher.Go(ctx, "session start", func(ctx context.Context) {
			if err := recorder.RecordStart(ctx, info); err != nil {
				log.Printf("[Session] WARNING: не удалось сохранить старт сессии %s: %v", info.ID, err)
			}
		})
	}
	return nil
}

// SelectAnswer выбирает вариант ответа.
// В режиме practice выбор только запоминается до подтверждения и возвращается nil;
// в режимах timed и review ответ сразу фиксируется и возвращается.
func (s *Session) SelectAnswer(questionID string, option int) (*entity.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return nil, err
	}
	q, err := s.questionLocked(questionID)
	if err != nil {
		return nil, err
	}
	if !q.IsValidOption(option) {
		return nil, fmt.Errorf("%w: option %d out of range for question %s", apperrors.ErrValidation, option, questionID)
	}

	if !s.behavior.commitOnSelect() {
		if committed, ok := s.answers[questionID]; ok && committed.SelectedAnswer != option {
			delete(s.revealed, questionID)
		}
		s.pending[questionID] = option
		return nil, nil
	}

	answer := s.commitLocked(q, option)
	return &answer, nil
}

// ConfirmAnswer фиксирует выбранный вариант в режиме practice и открывает пояснение.
// Неверный ответ сразу отправляется в журнал ошибок.
func (s *Session) ConfirmAnswer(ctx context.Context, questionID string) (*entity.Answer, error) {
	s.mu.Lock()
	if err := s.checkActiveLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.behavior.commitOnSelect() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: confirm in %s mode", apperrors.ErrInvalidTransition, s.behavior.mode())
	}
	q, err := s.questionLocked(questionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	option, ok := s.pending[questionID]
	if !ok {
		s.mu.Unlock()
		return nil, apperrors.ErrNoPendingSelection
	}

	answer := s.commitLocked(q, option)
	delete(s.pending, questionID)
	s.revealed[questionID] = true

	recordMiss := !answer.IsCorrect && s.behavior.recordMissOnConfirm() &&
		s.deps.Ledger != nil && s.userID != "" && !s.missRecorded[questionID]
	if recordMiss {
		s.missRecorded[questionID] = true
	}
	userID := s.userID
	missed := *q
	s.mu.Unlock()

	if recordMiss {
		ledger := s.deps.Ledger
		s.deps.Dispatcher.Go(ctx, "ledger miss", func(ctx context.Context) {
			if err := ledger.RecordMiss(ctx, userID, &missed, option); err != nil {
				log.Printf("[Session] WARNING: не удалось записать ошибку в журнал: %v", err)
			}
		})
	}
	return &answer, nil
}

// Advance переходит к следующему вопросу; на последнем вопросе индекс не меняется.
// В режиме practice переход с вопроса без ответа запрещен.
func (s *Session) Advance() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return s.current, err
	}
	if s.behavior.requireAnswerToAdvance() {
		if _, ok := s.answers[s.questions[s.current].ID]; !ok {
			return s.current, fmt.Errorf("%w: current question is not answered", apperrors.ErrInvalidTransition)
		}
	}
	if s.current < len(s.questions)-1 {
		s.current++
	}
	return s.current, nil
}

// Retreat возвращается к предыдущему вопросу; на первом вопросе индекс не меняется
func (s *Session) Retreat() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return s.current, err
	}
	if s.current > 0 {
		s.current--
	}
	return s.current, nil
}

// Tick уменьшает оставшееся время на секунду. Достижение нуля завершает сессию
// с уже записанными ответами; в этом случае возвращается true.
func (s *Session) Tick(ctx context.Context) bool {
	s.mu.Lock()
	if s.state != StateInProgress || s.abandoned || s.timeLimit == 0 || s.remaining <= 0 {
		s.mu.Unlock()
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return false
	}
	done := s.finishLocked()
	s.mu.Unlock()

	log.Printf("[Session] Время сессии %s истекло, выполняется автоматическое завершение", done.info.ID)
	s.stopTimer()
	s.runCompletionEffects(ctx, done)
	return true
}

// Submit завершает сессию: считает результат, обновляет журнал ошибок и сохраняет итоги.
// Выполняется не более одного раза; повторный вызов возвращает первый результат и ErrSessionCompleted.
func (s *Session) Submit(ctx context.Context) (*entity.SessionResult, error) {
	s.mu.Lock()
	if s.state == StateCompleted {
		result := copyResult(s.result)
		s.mu.Unlock()
		return result, apperrors.ErrSessionCompleted
	}
	if err := s.checkActiveLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	done := s.finishLocked()
	s.mu.Unlock()

	s.stopTimer()
	s.runCompletionEffects(ctx, done)
	return copyResult(done.result), nil
}

// Abandon прекращает сессию без отправки и сохранения ответов
func (s *Session) Abandon() bool {
	s.mu.Lock()
	ok := s.state == StateInProgress && !s.abandoned
	if ok {
		s.abandoned = true
	}
	id := s.id
	s.mu.Unlock()

	s.stopTimer()
	if ok {
		log.Printf("[Session] Сессия %s прервана пользователем", id)
	}
	return ok
}

// completion: данные для фоновых действий после завершения
type completion struct {
	info          SessionInfo
	answers       []entity.Answer
	ledgerAnswers []entity.Answer
	questions     []entity.Question
	result        *entity.SessionResult
}

func (s *Session) finishLocked() completion {
	now := s.deps.Clock.Now()
	answers := s.answersLocked()
	summary := Score(answers, s.questions, s.passingScore)

	spent := int(now.Sub(s.startedAt) / time.Second)
	if consumed := s.timeLimit - s.remaining; consumed > spent {
		spent = consumed
	}

	incorrect := summary.Incorrect
	if incorrect == nil {
		incorrect = []entity.IncorrectAnswer{}
	}
	result := &entity.SessionResult{
		SessionID:        s.id,
		Mode:             s.behavior.mode(),
		Score:            summary.Score,
		CorrectCount:     summary.CorrectCount,
		TotalQuestions:   summary.Total,
		TimeSpentSec:     spent,
		PassingScore:     s.passingScore,
		Passed:           summary.Passed,
		IncorrectAnswers: incorrect,
		CompletedAt:      now,
	}
	s.result = result
	s.state = StateCompleted
	s.pending = make(map[string]int)

	ledgerAnswers := make([]entity.Answer, 0, len(answers))
	for _, a := range answers {
		if !s.missRecorded[a.QuestionID] {
			ledgerAnswers = append(ledgerAnswers, a)
		}
	}

	log.Printf("[Session] Сессия %s завершена: %d/%d, балл %d, сдано: %t",
		s.id, summary.CorrectCount, summary.Total, summary.Score, summary.Passed)

	return completion{
		info:          s.infoLocked(),
		answers:       answers,
		ledgerAnswers: ledgerAnswers,
		questions:     s.questions,
		result:        copyResult(result),
	}
}

func (s *Session) runCompletionEffects(ctx context.Context, c completion) {
	d := s.deps
	if d.Ledger != nil && c.info.UserID != "" {
		d.Dispatcher.Go(ctx, "ledger update", func(ctx context.Context) {
			report := d.Ledger.Apply(ctx, c.info.UserID, c.info.Mode, c.ledgerAnswers, c.questions)
			log.Printf("[Session] Журнал ошибок сессии %s: добавлено %d, разобрано %d, сбоев %d",
				c.info.ID, report.Upserted, report.Resolved, report.Failed)
		})
	}
	if d.Recorder != nil {
		d.Dispatcher.Go(ctx, "session completion", func(ctx context.Context) {
			if err := d.Recorder.RecordCompletion(ctx, c.info, c.answers, c.result); err != nil {
				log.Printf("[Session] WARNING: не удалось сохранить итоги сессии %s: %v", c.info.ID, err)
			}
		})
	}
	if d.Stats != nil && len(c.answers) > 0 {
		d.Dispatcher.Go(ctx, "answer stats", func(ctx context.Context) {
			d.Stats.RecordAnswers(ctx, c.answers)
		})
	}
	if s.onComplete != nil {
		hook := s.onComplete
		d.Dispatcher.Go(ctx, "completion hook", func(ctx context.Context) {
			hook(ctx, c.info)
		})
	}
}

func (s *Session) commitLocked(q *entity.Question, option int) entity.Answer {
	elapsed := s.deps.Clock.Now().Sub(s.startedAt)
	for id, a := range s.answers {
		if id != q.ID {
			elapsed -= time.Duration(a.TimeSpentSec) * time.Second
		}
	}
	spent := int(elapsed / time.Second)
	if spent < 0 {
		spent = 0
	}

	answer := entity.Answer{
		QuestionID:     q.ID,
		SelectedAnswer: option,
		TimeSpentSec:   spent,
		IsCorrect:      q.IsCorrect(option),
	}
	if _, exists := s.answers[q.ID]; !exists {
		s.order = append(s.order, q.ID)
	}
	s.answers[q.ID] = answer
	return answer
}

func (s *Session) checkActiveLocked() error {
	switch {
	case s.state == StateCompleted:
		return apperrors.ErrSessionCompleted
	case s.state != StateInProgress:
		return fmt.Errorf("%w: session is %s", apperrors.ErrInvalidTransition, s.state)
	case s.abandoned:
		return fmt.Errorf("%w: session was abandoned", apperrors.ErrInvalidTransition)
	}
	return nil
}

func (s *Session) questionLocked(questionID string) (*entity.Question, error) {
	i, ok := s.index[questionID]
	if !ok {
		return nil, fmt.Errorf("%w: question %s is not part of the session", apperrors.ErrValidation, questionID)
	}
	return &s.questions[i], nil
}

func (s *Session) answersLocked() []entity.Answer {
	out := make([]entity.Answer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.answers[id])
	}
	return out
}

func (s *Session) infoLocked() SessionInfo {
	ids := make([]string, len(s.questions))
	for i := range s.questions {
		ids[i] = s.questions[i].ID
	}
	return SessionInfo{
		ID:          s.id,
		UserID:      s.userID,
		ExamID:      s.criteria.ExamID,
		Mode:        s.behavior.mode(),
		Criteria:    s.criteria,
		QuestionIDs: ids,
		StartedAt:   s.startedAt,
	}
}

func (s *Session) stopTimer() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func copyResult(r *entity.SessionResult) *entity.SessionResult {
	if r == nil {
		return nil
	}
	out := *r
	out.IncorrectAnswers = append([]entity.IncorrectAnswer{}, r.IncorrectAnswers...)
	return &out
}

// ID возвращает идентификатор сессии; пуст до Start
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// UserID возвращает владельца сессии
func (s *Session) UserID() string { return s.userID }

// Mode возвращает режим сессии
func (s *Session) Mode() entity.SessionMode { return s.behavior.mode() }

// State возвращает текущее состояние
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active сообщает, принимает ли сессия ответы
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateInProgress && !s.abandoned
}

// Remaining возвращает оставшееся время в секундах
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// TimeLimit возвращает лимит времени в секундах; 0, без таймера
func (s *Session) TimeLimit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeLimit
}

// Answers возвращает зафиксированные ответы в порядке первой фиксации
func (s *Session) Answers() []entity.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answersLocked()
}

// Result возвращает итог завершенной сессии или nil
func (s *Session) Result() *entity.SessionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyResult(s.result)
}
