package repository

import (
	"context"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// ExamRepository определяет методы для работы с экзаменами
type ExamRepository interface {
	Create(ctx context.Context, exam *entity.Exam) error
	GetByID(ctx context.Context, id uint) (*entity.Exam, error)
	List(ctx context.Context, activeOnly bool) ([]entity.Exam, error)
}
