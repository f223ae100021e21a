package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// ExamRepo реализует repository.ExamRepository
type ExamRepo struct {
	db *gorm.DB
}

// NewExamRepo создает новый репозиторий экзаменов
func NewExamRepo(db *gorm.DB) *ExamRepo {
	return &ExamRepo{db: db}
}

// Create создает экзамен
func (r *ExamRepo) Create(ctx context.Context, exam *entity.Exam) error {
	return mapError(r.db.WithContext(ctx).Create(exam).Error)
}

// GetByID возвращает экзамен по ID
func (r *ExamRepo) GetByID(ctx context.Context, id uint) (*entity.Exam, error) {
	var exam entity.Exam
	if err := r.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &exam, nil
}

// List возвращает экзамены, отсортированные по названию
func (r *ExamRepo) List(ctx context.Context, activeOnly bool) ([]entity.Exam, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var exams []entity.Exam
	if err := query.Order("title").Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}
