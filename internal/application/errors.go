package app

import "errors"

// DefaultUserMessage сообщение для пользователя, когда причина неизвестна
const DefaultUserMessage = "Unable to classify image. Please try again later."

// ClassificationError ошибка классификации: внутреннее описание для логов
// и короткое сообщение для пользователя.
type ClassificationError struct {
	Msg         string
	UserMessage string
	Err         error
}

func (e *ClassificationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// UserFacing возвращает сообщение для пользователя
func (e *ClassificationError) UserFacing() string {
	if e.UserMessage == "" {
		return e.Msg
	}
	return e.UserMessage
}

// ParseError ответ модели не удалось разобрать.
type ParseError struct {
	Msg         string
	UserMessage string
	Err         error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// UserFacing возвращает сообщение для пользователя
func (e *ParseError) UserFacing() string {
	if e.UserMessage == "" {
		return e.Msg
	}
	return e.UserMessage
}

type userFacing interface {
	UserFacing() string
}

// UserMessage достаёт из цепочки ошибок сообщение для пользователя.
func UserMessage(err error) string {
	var uf userFacing
	if errors.As(err, &uf) {
		return uf.UserFacing()
	}
	return DefaultUserMessage
}
