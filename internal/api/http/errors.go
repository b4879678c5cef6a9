package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/selfcheck/internal/catalogue"
	"github.com/mind-engage/selfcheck/internal/question"
	"github.com/mind-engage/selfcheck/internal/session"
	"github.com/mind-engage/selfcheck/internal/storage"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, catalogue.ErrNotFound),
		errors.Is(err, session.ErrPageNotFound),
		errors.Is(err, session.ErrQuestionNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, question.ErrInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusOf(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
