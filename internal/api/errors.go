package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/agrix/agrix-server/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler makes huma build every error through APIError.
// Domain errors keep their code and status; anything else is classified by
// the status huma chose, which is 500 for errors returned by handlers.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		var details []string
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if domainerrors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}
			if err != nil && status < http.StatusInternalServerError {
				details = append(details, err.Error())
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		if len(details) > 0 {
			apiErr.Details = details
		}
		return apiErr
	}
}

// statusToCode maps HTTP status codes to domain error codes.
func statusToCode(status int) string {
	switch {
	case status == http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case status == http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	case status >= 400 && status < 500:
		return string(domainerrors.CodeValidation)
	default:
		return string(domainerrors.CodeInternal)
	}
}

// unexpected logs errors that are not domain errors. Domain errors are
// expected outcomes (404, 400) and go back to the client untouched.
func (s *Server) unexpected(ctx context.Context, msg string, err error) error {
	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		s.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", middleware.GetReqID(ctx),
		)
	}
	return err
}
