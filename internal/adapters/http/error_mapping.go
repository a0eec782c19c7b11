package httpadapter

import (
	"net/http"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrUpstreamModel):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrUpstreamStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func userFacingError(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return err.Error()
	case domain.IsKind(err, domain.ErrUpstreamModel):
		return "the assistant is temporarily unavailable, please try again"
	case domain.IsKind(err, domain.ErrUpstreamStore), domain.IsKind(err, domain.ErrTemporary):
		return "a backing service is temporarily unavailable, please try again"
	default:
		return "internal error"
	}
}
