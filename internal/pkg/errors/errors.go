package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, повторная модерация предложения).
	ErrConflict = errors.New("resource state conflict")

	// ErrNoQuestions: ни один уровень источников не дал вопросов под заданные фильтры.
	// Пользователь может повторить попытку.
	ErrNoQuestions = errors.New("no questions available for these filters")

	// ErrSessionCompleted: сессия уже завершена, повторная отправка не выполняется.
	ErrSessionCompleted = errors.New("exam session already completed")

	// ErrInvalidTransition: операция недопустима в текущем состоянии или режиме сессии.
	ErrInvalidTransition = errors.New("operation not allowed in current session state")

	// ErrNoPendingSelection: подтверждение без выбранного варианта.
	ErrNoPendingSelection = errors.New("no pending selection to confirm")

	// ErrNoActiveSession: у пользователя нет активной сессии.
	ErrNoActiveSession = errors.New("no active exam session")

	// ErrRateLimited: превышен лимит запросов пользователя.
	ErrRateLimited = errors.New("too many requests")
)
