package server

import (
	"errors"
	"net/http"
)

// Action error codes. Every game-rule rejection carries one of these;
// all are recoverable and map to a user-visible message.
const (
	codeValidation        = "validation"
	codeAuthorization     = "authorization"
	codeOutOfTurn         = "out_of_turn"
	codeInvalidPhase      = "invalid_phase"
	codeAlreadyActed      = "already_acted"
	codeDuplicateIdentity = "duplicate_identity"
	codeInsufficientCards = "insufficient_cards"
	codeInvalidAdjustment = "invalid_adjustment"
	codeNotFound          = "not_found"
)

type ActionError struct {
	Code    string
	Message string
}

func (e *ActionError) Error() string {
	return e.Message
}

func errValidation(message string) *ActionError {
	return &ActionError{Code: codeValidation, Message: message}
}

func errAuthorization(message string) *ActionError {
	return &ActionError{Code: codeAuthorization, Message: message}
}

func errOutOfTurn(message string) *ActionError {
	return &ActionError{Code: codeOutOfTurn, Message: message}
}

func errInvalidPhase(message string) *ActionError {
	return &ActionError{Code: codeInvalidPhase, Message: message}
}

func errAlreadyActed(message string) *ActionError {
	return &ActionError{Code: codeAlreadyActed, Message: message}
}

func errDuplicateIdentity(message string) *ActionError {
	return &ActionError{Code: codeDuplicateIdentity, Message: message}
}

func errInsufficientCards(message string) *ActionError {
	return &ActionError{Code: codeInsufficientCards, Message: message}
}

func errInvalidAdjustment(message string) *ActionError {
	return &ActionError{Code: codeInvalidAdjustment, Message: message}
}

func errNotFound(message string) *ActionError {
	return &ActionError{Code: codeNotFound, Message: message}
}

func actionErrorCode(err error) string {
	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Code
	}
	return ""
}

func statusForError(err error) int {
	switch actionErrorCode(err) {
	case codeValidation:
		return http.StatusBadRequest
	case codeAuthorization:
		return http.StatusForbidden
	case codeNotFound:
		return http.StatusNotFound
	case codeOutOfTurn, codeInvalidPhase, codeAlreadyActed,
		codeDuplicateIdentity, codeInsufficientCards, codeInvalidAdjustment:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
