package examengine

import (
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
)

// modeBehavior описывает различия режимов сессии.
// Все ветвления по режиму проходят через этот интерфейс.
type modeBehavior interface {
	mode() entity.SessionMode
	// commitOnSelect: true, выбор сразу фиксируется как ответ, false, ждет подтверждения
	commitOnSelect() bool
	// requireAnswerToAdvance запрещает переход дальше с вопроса без ответа
	requireAnswerToAdvance() bool
	// recordMissOnConfirm: ошибка при подтверждении сразу попадает в журнал
	recordMissOnConfirm() bool
	// timeLimit возвращает лимит времени в секундах; 0, без таймера
	timeLimit(exam *entity.Exam, questionCount int, cfg *Config) int
}

type practiceMode struct{}

func (practiceMode) mode() entity.SessionMode { return entity.ModePractice }
func (practiceMode) commitOnSelect() bool { return false }
func (practiceMode) requireAnswerToAdvance() bool { return true }
func (practiceMode) recordMissOnConfirm() bool { return true }
func (practiceMode) timeLimit(*entity.Exam, int, *Config) int {
	return 0
}

type timedMode struct{}

func (timedMode) mode() entity.SessionMode { return entity.ModeTimed }
func (timedMode) commitOnSelect() bool { return true }
func (timedMode) requireAnswerToAdvance() bool { return false }
func (timedMode) recordMissOnConfirm() bool { return false }

// timeLimit берет лимит экзамена (0 у экзамена означает без таймера),
// без экзамена отводит фиксированное время на каждый вопрос
func (timedMode) timeLimit(exam *entity.Exam, questionCount int, cfg *Config) int {
	if exam != nil {
		return exam.TimeLimitSeconds()
	}
	perQuestion := cfg.TimedSecondsPerQuestion
	if perQuestion <= 0 {
		perQuestion = DefaultTimedSecondsPerQ
	}
	return questionCount * perQuestion
}

type reviewMode struct{}

func (reviewMode) mode() entity.SessionMode { return entity.ModeReview }
func (reviewMode) commitOnSelect() bool { return true }
func (reviewMode) requireAnswerToAdvance() bool { return false }
func (reviewMode) recordMissOnConfirm() bool { return false }
func (reviewMode) timeLimit(*entity.Exam, int, *Config) int {
	return 0
}

func behaviorFor(mode entity.SessionMode) modeBehavior {
	switch mode {
	case entity.ModeTimed:
		return timedMode{}
	case entity.ModeReview:
		return reviewMode{}
	default:
		return practiceMode{}
	}
}
