package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
)

// activeSessionTTL: время жизни отметки активной сессии в Redis
const activeSessionTTL = 6 * time.Hour

// startLockTTL: время жизни блокировки старта сессии
const startLockTTL = 10 * time.Second

// ExamServiceDeps содержит зависимости ExamService
type ExamServiceDeps struct {
	Bank         *examengine.QuestionBank
	Selector     *examengine.Selector
	Normalizer   *examengine.CriteriaNormalizer
	Ledger       *examengine.ReviewLedger
	Stats        *examengine.StatsRecorder
	Recorder     examengine.SessionRecorder
	Dispatcher   examengine.Dispatcher
	Clock        examengine.Clock
	Config       *examengine.Config
	ExamRepo     repository.ExamRepository
	QuestionRepo repository.QuestionRepository
	SessionRepo  repository.SessionRecordRepository
	CacheRepo    repository.CacheRepository
}

// StartedSession: результат старта сессии
type StartedSession struct {
	Session    examengine.SessionView `json:"session"`
	Stage      string                 `json:"selection_stage"`
	PoolSize   int                    `json:"pool_size"`
	FromLedger bool                   `json:"from_ledger"`
}

// SubmitOutcome: результат завершения; AlreadyCompleted означает повторную отправку
type SubmitOutcome struct {
	Result           *entity.SessionResult `json:"result"`
	AlreadyCompleted bool                  `json:"already_completed"`
}

// ExamService управляет сессиями пользователей: по одной активной сессии на пользователя
type ExamService struct {
	bank         *examengine.QuestionBank
	selector     *examengine.Selector
	normalizer   *examengine.CriteriaNormalizer
	ledger       *examengine.ReviewLedger
	stats        *examengine.StatsRecorder
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	sessionRepo  repository.SessionRecordRepository
	cacheRepo    repository.CacheRepository
	sessionDeps  *examengine.Dependencies

	mu       sync.Mutex
	sessions map[string]*examengine.Session

	rootCtx context.Context
	cancel  context.CancelFunc
}

// NewExamService создает сервис экзаменов
func NewExamService(deps ExamServiceDeps) *ExamService {
	cfg := deps.Config
	if cfg == nil {
		cfg = examengine.DefaultConfig()
	}
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = examengine.NewCriteriaNormalizer(cfg)
	}

	sessionDeps := &examengine.Dependencies{
		Recorder:   deps.Recorder,
		Dispatcher: deps.Dispatcher,
		Clock:      deps.Clock,
		Config:     cfg,
	}
	// Присваиваем только ненулевые указатели: nil-указатель в интерфейсе не равен nil
	if deps.Ledger != nil {
		sessionDeps.Ledger = deps.Ledger
	}
	if deps.Stats != nil {
		sessionDeps.Stats = deps.Stats
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ExamService{
		bank:         deps.Bank,
		selector:     deps.Selector,
		normalizer:   normalizer,
		ledger:       deps.Ledger,
		stats:        deps.Stats,
		examRepo:     deps.ExamRepo,
		questionRepo: deps.QuestionRepo,
		sessionRepo:  deps.SessionRepo,
		cacheRepo:    deps.CacheRepo,
		sessionDeps:  sessionDeps,
		sessions:     make(map[string]*examengine.Session),
		rootCtx:      ctx,
		cancel:       cancel,
	}
}

func activeSessionKey(userID string) string {
	return fmt.Sprintf("exam:active:%s", userID)
}

func startLockKey(userID string) string {
	return fmt.Sprintf("exam:start-lock:%s", userID)
}

// resolveCriteria подставляет параметры экзамена в незаполненные поля критериев
func (s *ExamService) resolveCriteria(ctx context.Context, userID string, raw examengine.RawCriteria) (examengine.Criteria, *entity.Exam, error) {
	raw.UserID = userID

	var exam *entity.Exam
	if raw.ExamID != 0 && s.examRepo != nil {
		found, err := s.examRepo.GetByID(ctx, raw.ExamID)
		if err != nil {
			return examengine.Criteria{}, nil, err
		}
		if !found.IsActive {
			return examengine.Criteria{}, nil, fmt.Errorf("%w: exam %d is not active", apperrors.ErrNotFound, raw.ExamID)
		}
		exam = found
		if raw.Category == "" {
			raw.Category = exam.Category
		}
		if raw.Aircraft == "" {
			raw.Aircraft = exam.Aircraft
		}
		if raw.Difficulty == "" {
			raw.Difficulty = exam.Difficulty
		}
		if raw.Count == 0 {
			raw.Count = exam.QuestionCount
		}
	}
	return s.normalizer.Normalize(raw), exam, nil
}

// StartSession отбирает вопросы и начинает новую сессию.
// Предыдущая незавершенная сессия пользователя прерывается.
func (s *ExamService) StartSession(ctx context.Context, userID string, raw examengine.RawCriteria) (*StartedSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrValidation)
	}
	release, err := s.acquireStartLock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	criteria, exam, err := s.resolveCriteria(ctx, userID, raw)
	if err != nil {
		return nil, err
	}

	questions := s.bank.GetAllQuestions(ctx)
	if len(questions) == 0 {
		return nil, apperrors.ErrNoQuestions
	}
	selection := s.selector.SelectForUser(ctx, questions, criteria)
	if len(selection.Questions) == 0 {
		return nil, apperrors.ErrNoQuestions
	}

	session := examengine.NewSession(examengine.SessionParams{
		UserID:    userID,
		Criteria:  criteria,
		Questions: selection.Questions,
		Exam:      exam,
		OnComplete: func(ctx context.Context, info examengine.SessionInfo) {
			s.releaseActive(ctx, info.UserID, info.ID)
		},
	}, s.sessionDeps)
	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	previous := s.sessions[userID]
	s.sessions[userID] = session
	s.mu.Unlock()

	if previous != nil && previous.Abandon() {
		log.Printf("[ExamService] Предыдущая сессия %s пользователя %s прервана новым стартом", previous.ID(), userID)
	}
	if session.TimeLimit() > 0 {
		go session.RunTimer(s.rootCtx)
	}
	s.markActive(ctx, userID, session.ID())

	log.Printf("[ExamService] Пользователь %s начал сессию %s (режим %s, ступень %s, вопросов %d из %d)",
		userID, session.ID(), criteria.Mode, selection.Stage, len(selection.Questions), selection.PoolSize)

	return &StartedSession{
		Session:    session.Snapshot(),
		Stage:      selection.Stage,
		PoolSize:   selection.PoolSize,
		FromLedger: selection.FromLedger,
	}, nil
}

func (s *ExamService) current(userID string) (*examengine.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, apperrors.ErrNoActiveSession
	}
	return session, nil
}

// CurrentSession возвращает снимок текущей сессии пользователя, в том числе завершенной
func (s *ExamService) CurrentSession(userID string) (examengine.SessionView, error) {
	session, err := s.current(userID)
	if err != nil {
		return examengine.SessionView{}, err
	}
	return session.Snapshot(), nil
}

// SelectAnswer выбирает вариант ответа в текущей сессии
func (s *ExamService) SelectAnswer(userID, questionID string, option int) (examengine.SessionView, error) {
	session, err := s.current(userID)
	if err != nil {
		return examengine.SessionView{}, err
	}
	if _, err := session.SelectAnswer(questionID, option); err != nil {
		return examengine.SessionView{}, err
	}
	return session.Snapshot(), nil
}

// ConfirmAnswer подтверждает выбор в режиме practice
func (s *ExamService) ConfirmAnswer(ctx context.Context, userID, questionID string) (*entity.Answer, examengine.SessionView, error) {
	session, err := s.current(userID)
	if err != nil {
		return nil, examengine.SessionView{}, err
	}
	answer, err := session.ConfirmAnswer(ctx, questionID)
	if err != nil {
		return nil, examengine.SessionView{}, err
	}
	return answer, session.Snapshot(), nil
}

// Advance переходит к следующему вопросу
func (s *ExamService) Advance(userID string) (examengine.SessionView, error) {
	session, err := s.current(userID)
	if err != nil {
		return examengine.SessionView{}, err
	}
	if _, err := session.Advance(); err != nil {
		return examengine.SessionView{}, err
	}
	return session.Snapshot(), nil
}

// Retreat возвращается к предыдущему вопросу
func (s *ExamService) Retreat(userID string) (examengine.SessionView, error) {
	session, err := s.current(userID)
	if err != nil {
		return examengine.SessionView{}, err
	}
	if _, err := session.Retreat(); err != nil {
		return examengine.SessionView{}, err
	}
	return session.Snapshot(), nil
}

// Submit завершает текущую сессию. Для уже завершенной сессии возвращается сохраненный результат.
func (s *ExamService) Submit(ctx context.Context, userID string) (*SubmitOutcome, error) {
	session, err := s.current(userID)
	if err != nil {
		return nil, err
	}
	result, err := session.Submit(ctx)
	if errors.Is(err, apperrors.ErrSessionCompleted) && result != nil {
		return &SubmitOutcome{Result: result, AlreadyCompleted: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &SubmitOutcome{Result: result}, nil
}

// Abandon прерывает текущую сессию без сохранения
func (s *ExamService) Abandon(ctx context.Context, userID string) error {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if !ok {
		return apperrors.ErrNoActiveSession
	}
	session.Abandon()
	s.releaseActive(ctx, userID, session.ID())
	return nil
}

func (s *ExamService) markActive(ctx context.Context, userID, sessionID string) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Set(ctx, activeSessionKey(userID), sessionID, activeSessionTTL); err != nil {
		log.Printf("[ExamService] WARNING: не удалось сохранить отметку активной сессии: %v", err)
	}
}

// releaseActive снимает отметку, только если она принадлежит sessionID:
// отметку новой сессии завершение старой не трогает
func (s *ExamService) releaseActive(ctx context.Context, userID, sessionID string) {
	if s.cacheRepo == nil {
		return
	}
	key := activeSessionKey(userID)
	current, err := s.cacheRepo.Get(ctx, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return
	}
	if err != nil {
		log.Printf("[ExamService] WARNING: не удалось прочитать отметку активной сессии: %v", err)
		return
	}
	if current != sessionID {
		return
	}
	if err := s.cacheRepo.Delete(ctx, key); err != nil {
		log.Printf("[ExamService] WARNING: не удалось удалить отметку активной сессии: %v", err)
	}
}

// acquireStartLock не дает одному пользователю стартовать две сессии одновременно.
// При недоступном Redis старт не блокируется.
func (s *ExamService) acquireStartLock(ctx context.Context, userID string) (func(), error) {
	noop := func() {}
	if s.cacheRepo == nil {
		return noop, nil
	}
	key := startLockKey(userID)
	acquired, err := s.cacheRepo.SetNX(ctx, key, "1", startLockTTL)
	if err != nil {
		log.Printf("[ExamService] WARNING: блокировка старта недоступна, продолжаем без нее: %v", err)
		return noop, nil
	}
	if !acquired {
		return nil, fmt.Errorf("%w: session start already in progress for user %s", apperrors.ErrConflict, userID)
	}
	return func() {
		if err := s.cacheRepo.Delete(context.WithoutCancel(ctx), key); err != nil {
			log.Printf("[ExamService] WARNING: не удалось снять блокировку старта: %v", err)
		}
	}, nil
}

// Preview отбирает вопросы без создания сессии
func (s *ExamService) Preview(ctx context.Context, userID string, raw examengine.RawCriteria) (examengine.Criteria, examengine.Selection, error) {
	criteria, _, err := s.resolveCriteria(ctx, userID, raw)
	if err != nil {
		return examengine.Criteria{}, examengine.Selection{}, err
	}
	questions := s.bank.GetAllQuestions(ctx)
	if len(questions) == 0 {
		return criteria, examengine.Selection{}, apperrors.ErrNoQuestions
	}
	return criteria, s.selector.SelectForUser(ctx, questions, criteria), nil
}

// InvalidateBank сбрасывает кеш банка вопросов
func (s *ExamService) InvalidateBank() {
	s.bank.Invalidate()
}

// BankReport: состояние кеша банка и число активных вопросов в БД
type BankReport struct {
	examengine.CacheState
	ActiveInDatabase *int64 `json:"active_in_database,omitempty"`
}

// BankReport дополняет состояние кеша счетчиком активных вопросов в PostgreSQL.
// Сбой подсчета не считается ошибкой: поле просто не заполняется.
func (s *ExamService) BankReport(ctx context.Context) BankReport {
	report := BankReport{CacheState: s.bank.State()}
	if s.questionRepo == nil {
		return report
	}
	count, err := s.questionRepo.CountActive(ctx)
	if err != nil {
		log.Printf("[ExamService] WARNING: не удалось посчитать активные вопросы: %v", err)
		return report
	}
	report.ActiveInDatabase = &count
	return report
}

// BankState возвращает состояние кеша банка вопросов
func (s *ExamService) BankState() examengine.CacheState {
	return s.bank.State()
}

// ListQuestions возвращает вопросы из хранилища по фильтру
func (s *ExamService) ListQuestions(ctx context.Context, filter repository.QuestionFilter) ([]entity.Question, error) {
	if filter.Aircraft != "" {
		filter.Aircraft = examengine.NormalizeAircraft(filter.Aircraft)
		if filter.Aircraft == examengine.AircraftAll {
			filter.Aircraft = ""
		}
	}
	if filter.Difficulty != "" {
		filter.Difficulty = examengine.CanonicalDifficulty(string(filter.Difficulty))
	}
	return s.questionRepo.Find(ctx, filter)
}

// DeactivateQuestion выключает вопрос и сбрасывает кеш банка
func (s *ExamService) DeactivateQuestion(ctx context.Context, id string) error {
	if err := s.questionRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.bank.Invalidate()
	return nil
}

// QuestionStats возвращает счетчики ответов на вопрос
func (s *ExamService) QuestionStats(ctx context.Context, questionID string) (examengine.QuestionStats, error) {
	if s.stats == nil {
		return examengine.QuestionStats{QuestionID: questionID}, nil
	}
	return s.stats.Get(ctx, questionID)
}

// ListMissed возвращает журнал ошибок пользователя
func (s *ExamService) ListMissed(ctx context.Context, userID string, includeResolved bool) ([]entity.MissedQuestion, error) {
	if s.ledger == nil {
		return []entity.MissedQuestion{}, nil
	}
	return s.ledger.Entries(ctx, userID, includeResolved)
}

// ListExams возвращает экзамены
func (s *ExamService) ListExams(ctx context.Context, activeOnly bool) ([]entity.Exam, error) {
	return s.examRepo.List(ctx, activeOnly)
}

// GetExam возвращает экзамен по ID
func (s *ExamService) GetExam(ctx context.Context, id uint) (*entity.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// History возвращает сохраненные сессии пользователя
func (s *ExamService) History(ctx context.Context, userID string, limit, offset int) ([]entity.SessionRecord, int64, error) {
	return s.sessionRepo.ListByUser(ctx, userID, limit, offset)
}

// Shutdown останавливает таймеры всех сессий
func (s *ExamService) Shutdown() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, session := range s.sessions {
		session.Abandon()
		delete(s.sessions, userID)
	}
	log.Println("[ExamService] Сервис экзаменов остановлен")
}
