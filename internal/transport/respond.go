package transport

import (
	"net/http"

	"kommshop-catalog/internal/domain"
	"kommshop-catalog/internal/middleware"

	"go.uber.org/zap"
)

// statusForKind maps the catalog error taxonomy onto HTTP status codes.
// This mapping lives only in the transport layer; services and
// repositories know nothing about HTTP.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidCategory, domain.KindCastError:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs a classified failure and writes its mapped
// status with a stable error body
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	if status >= http.StatusInternalServerError {
		logger.Error("Catalog operation failed", zap.Error(err))
	} else {
		logger.Debug("Catalog operation rejected", zap.Error(err))
	}

	middleware.RespondWithError(w, status, string(kind))
}
