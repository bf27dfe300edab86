package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so that cloned errors still compare equal
// to their predefined origin.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. Messages are user facing.
var (
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "Dados inválidos")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "Usuário ou senha inválidos")
	ErrPasswordNotSet     = New("PASSWORD_NOT_SET", http.StatusUnauthorized, "Usuário não possui senha definida")
	ErrWrongUserType      = New("WRONG_USER_TYPE", http.StatusUnauthorized, "Tipo de usuário incorreto")
	ErrTokenMissing       = New("TOKEN_MISSING", http.StatusUnauthorized, "Token de acesso não fornecido")
	ErrTokenInvalidFormat = New("TOKEN_INVALID_FORMAT", http.StatusUnauthorized, "Token inválido - formato não reconhecido")
	ErrTokenExpired       = New("TOKEN_EXPIRED", http.StatusUnauthorized, "Token expirado")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "Usuário não autenticado")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "Acesso não autorizado a este recurso")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "Recurso não encontrado")
	ErrGroupNotFound      = New("GROUP_NOT_FOUND", http.StatusBadRequest, "Grupo de usuário inválido.")
	ErrConflict           = New("CONFLICT", http.StatusBadRequest, "Registro já existente")
	ErrRateLimited        = New("RATE_LIMITED", http.StatusTooManyRequests, "Muitas tentativas. Tente novamente mais tarde.")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "Erro interno do servidor")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Internal wraps err as an internal error. The message stays server side.
func Internal(err error, detail string) *Error {
	return Wrap(fmt.Errorf("%s: %w", detail, err), ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}
