package domain

import "errors"

var (
	// ErrHandlerFailed — обработчик интента вернул ошибку или упал
	ErrHandlerFailed = errors.New("intent handler failed")
	// ErrNoHandler — для интента не зарегистрирован обработчик
	ErrNoHandler = errors.New("no handler registered for intent")
	// ErrInvalidRule — правило классификации не компилируется
	ErrInvalidRule = errors.New("invalid intent rule")

	ErrInvalidCredentials = errors.New("invalid credentials")
)
