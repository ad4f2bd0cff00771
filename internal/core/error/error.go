package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "Something went wrong while answering. Please try again."
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// RetrievalErrorMessage describes knowledge base failures.
	RetrievalErrorMessage = "knowledge base unavailable"
	// GenerationErrorMessage is shown to the user when the model backend fails.
	GenerationErrorMessage = "The assistant is temporarily unavailable. Please try again in a moment."
	// TimeoutErrorMessage is shown to the user when the request deadline passes.
	TimeoutErrorMessage = "The assistant took too long to respond. Please try again."
)

// Kind classifies a failure inside the assistant pipeline.
type Kind string

const (
	KindInternal              Kind = "internal"
	KindInputRejected         Kind = "input_rejected"
	KindRetrievalUnavailable  Kind = "retrieval_unavailable"
	KindInsufficientGrounding Kind = "insufficient_grounding"
	KindGenerationFailure     Kind = "generation_failure"
	KindMalformedHistory      Kind = "malformed_history"
	KindStorage               Kind = "storage"
)

// AppError wraps an underlying error with an HTTP status, a safe message and a kind.
type AppError struct {
	Err     error
	Status  int
	Message string
	Kind    Kind
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
		Kind:    KindInternal,
	}
}

// Rejected builds the error for a query refused by the sanitizer. The reason
// is already safe to show to the user.
func Rejected(reason string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Message: reason,
		Kind:    KindInputRejected,
	}
}

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return &AppError{Err: err, Status: http.StatusNotFound, Message: RedisNotFoundMessage, Kind: KindStorage}
	}
	return &AppError{Err: err, Status: http.StatusBadGateway, Message: RedisErrorMessage, Kind: KindStorage}
}

// WrapRetrieval marks a knowledge base failure. Callers recover from it locally.
func WrapRetrieval(err error) error {
	if err == nil {
		return nil
	}
	return &AppError{Err: err, Status: http.StatusBadGateway, Message: RetrievalErrorMessage, Kind: KindRetrievalUnavailable}
}

// WrapGeneration marks a model backend failure, distinguishing deadline expiry.
func WrapGeneration(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Err: err, Status: http.StatusGatewayTimeout, Message: TimeoutErrorMessage, Kind: KindGenerationFailure}
	}
	return &AppError{Err: err, Status: http.StatusBadGateway, Message: GenerationErrorMessage, Kind: KindGenerationFailure}
}

// KindOf returns the kind of the first AppError in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindInternal
}

// UserMessage returns the text that may be shown to the client for err.
// Internal details never leak; unknown errors map to SystemErrorMessage.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindInputRejected, KindGenerationFailure:
			return appErr.Message
		}
	}
	return SystemErrorMessage
}
