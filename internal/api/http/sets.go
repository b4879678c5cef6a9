package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/selfcheck/internal/catalogue"
)

// GET /sets
func ListSetsHandler(src catalogue.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := src.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /sets/{setID}: prompts and options only.
func GetSetHandler(src catalogue.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := src.Get(r.Context(), chi.URLParam(r, "setID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, set.Public())
	}
}
