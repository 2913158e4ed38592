package web

import (
	"errors"
	"net/http"

	"tasktide/internal/domain/entity"
	"tasktide/internal/infrastructure/persistence/sqlstore"
	"tasktide/internal/web/res"
)

// WriteErr maps domain errors onto HTTP status codes
func WriteErr(w http.ResponseWriter, err error) {
	switch {
	case entity.IsValidationError(err),
		errors.Is(err, entity.ErrColumnNotFound),
		errors.Is(err, sqlstore.ErrMissingUser):
		res.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrProjectNotFound),
		errors.Is(err, entity.ErrDependencyNotFound):
		res.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, sqlstore.ErrDependencyExists):
		res.Error(w, err.Error(), http.StatusConflict)
	default:
		res.Error(w, "internal error", http.StatusInternalServerError)
	}
}
