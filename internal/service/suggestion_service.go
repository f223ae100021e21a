package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/lib/pq"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/repository"
	apperrors "github.com/RoutinizeWellness/aviate-ace-sub001/internal/pkg/errors"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
)

// SuggestionInput: данные предложенного вопроса
type SuggestionInput struct {
	Text          string   `validate:"required,min=10,max=2000"`
	Options       []string `validate:"len=4,dive,required,max=500"`
	CorrectAnswer int      `validate:"min=0,max=3"`
	Explanation   string   `validate:"max=4000"`
	Aircraft      string   `validate:"max=32"`
	Category      string   `validate:"required,max=100"`
	Difficulty    string   `validate:"max=20"`
	References    []string `validate:"max=10,dive,max=255"`
}

// ReviewDecision: решение модератора
type ReviewDecision struct {
	Status string `validate:"required,oneof=approved rejected needs_review"`
	Note   string `validate:"max=1000"`
}

// BankInvalidator сбрасывает кеш банка вопросов
type BankInvalidator interface {
	Invalidate()
}

// questionDraft: общие поля предложения и вопроса
type questionDraft struct {
	Text          string
	Options       entity.StringArray
	CorrectAnswer int
	Explanation   string
	Aircraft      string
	Category      string
	Difficulty    entity.Difficulty
	References    pq.StringArray
}

// SuggestionService ведет модерацию предложенных вопросов
type SuggestionService struct {
	repo     repository.SuggestionRepository
	bank     BankInvalidator
	clock    examengine.Clock
	validate *validator.Validate
}

// NewSuggestionService создает сервис предложений
func NewSuggestionService(repo repository.SuggestionRepository, bank BankInvalidator, clock examengine.Clock) *SuggestionService {
	if clock == nil {
		clock = examengine.SystemClock()
	}
	return &SuggestionService{
		repo:     repo,
		bank:     bank,
		clock:    clock,
		validate: validator.New(),
	}
}

// Submit сохраняет предложение пользователя со статусом pending
func (s *SuggestionService) Submit(ctx context.Context, userID string, in SuggestionInput) (*entity.QuestionSuggestion, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrValidation)
	}
	in.Text = strings.TrimSpace(in.Text)
	in.Category = strings.TrimSpace(in.Category)
	for i := range in.Options {
		in.Options[i] = strings.TrimSpace(in.Options[i])
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	aircraft := examengine.NormalizeAircraft(in.Aircraft)
	if aircraft == examengine.AircraftAll {
		aircraft = entity.AircraftGeneral
	}

	suggestion := &entity.QuestionSuggestion{
		UserID:        userID,
		Text:          in.Text,
		Options:       entity.StringArray(in.Options),
		CorrectAnswer: in.CorrectAnswer,
		Explanation:   strings.TrimSpace(in.Explanation),
		Aircraft:      aircraft,
		Category:      in.Category,
		Difficulty:    examengine.CanonicalDifficulty(in.Difficulty),
		References:    pq.StringArray(in.References),
		Status:        entity.SuggestionPending,
	}
	if err := s.repo.Create(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("failed to create suggestion: %w", err)
	}

	log.Printf("[SuggestionService] Пользователь %s предложил вопрос #%d", userID, suggestion.ID)
	return suggestion, nil
}

// List возвращает предложения с указанным статусом; пустой статус, все
func (s *SuggestionService) List(ctx context.Context, status string, limit, offset int) ([]entity.QuestionSuggestion, int64, error) {
	switch status {
	case "", entity.SuggestionPending, entity.SuggestionApproved, entity.SuggestionRejected, entity.SuggestionNeedsReview:
	default:
		return nil, 0, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// Review применяет решение модератора. Одобрение создает вопрос в банке и сбрасывает кеш.
func (s *SuggestionService) Review(ctx context.Context, id uint, decision ReviewDecision) (*entity.QuestionSuggestion, error) {
	if err := s.validate.Struct(decision); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	suggestion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !suggestion.CanTransitionTo(decision.Status) {
		return nil, fmt.Errorf("%w: suggestion %d cannot move from %s to %s",
			apperrors.ErrConflict, id, suggestion.Status, decision.Status)
	}

	now := s.clock.Now()
	suggestion.Status = decision.Status
	suggestion.ReviewerNote = strings.TrimSpace(decision.Note)
	suggestion.ReviewedAt = &now

	if decision.Status != entity.SuggestionApproved {
		if err := s.repo.Update(ctx, suggestion); err != nil {
			return nil, fmt.Errorf("failed to update suggestion %d: %w", id, err)
		}
		log.Printf("[SuggestionService] Предложение #%d переведено в статус %s", id, decision.Status)
		return suggestion, nil
	}

	question, err := questionFromSuggestion(suggestion)
	if err != nil {
		return nil, err
	}
	suggestion.QuestionID = &question.ID
	if err := s.repo.Approve(ctx, suggestion, question); err != nil {
		return nil, fmt.Errorf("failed to approve suggestion %d: %w", id, err)
	}
	if s.bank != nil {
		s.bank.Invalidate()
	}

	log.Printf("[SuggestionService] Предложение #%d одобрено, создан вопрос %s", id, question.ID)
	return suggestion, nil
}

func questionFromSuggestion(suggestion *entity.QuestionSuggestion) (*entity.Question, error) {
	var draft questionDraft
	if err := copier.Copy(&draft, suggestion); err != nil {
		return nil, fmt.Errorf("copy suggestion: %w", err)
	}
	var question entity.Question
	if err := copier.Copy(&question, &draft); err != nil {
		return nil, fmt.Errorf("copy question draft: %w", err)
	}
	question.IsActive = true

	normalized, err := examengine.Canonicalize(question)
	if err != nil {
		return nil, err
	}
	return &normalized, nil
}
