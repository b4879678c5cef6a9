package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/selfcheck/internal/auth/middleware"
	"github.com/mind-engage/selfcheck/internal/controller"
	"github.com/mind-engage/selfcheck/internal/session"
)

type mountResponse struct {
	session.View
	Token string `json:"token"`
}

type submitResponse struct {
	Outcome controller.Outcome `json:"outcome"`
	controller.Snapshot
}

// POST /pages {"set_id": "..."}
func MountPageHandler(pages *session.Store, a *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SetID string `json:"set_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.SetID == "" {
			http.Error(w, "set_id required", http.StatusBadRequest)
			return
		}
		v, err := pages.Mount(r.Context(), req.SetID)
		if err != nil {
			writeErr(w, err)
			return
		}
		tok, err := a.IssuePageToken(v.ID, v.SetID)
		if err != nil {
			_ = pages.Unmount(v.ID)
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, mountResponse{View: v, Token: tok})
	}
}

// GET /pages/{pageID}
func GetPageHandler(pages *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := pages.View(chi.URLParam(r, "pageID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// POST /pages/{pageID}/questions/{name}/submit {"value": ...}
func SubmitHandler(pages *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		raw, err := rawValue(req.Value)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		snap, out, err := pages.Submit(chi.URLParam(r, "pageID"), chi.URLParam(r, "name"), raw)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, submitResponse{Outcome: out, Snapshot: snap})
	}
}

// POST /pages/{pageID}/reset
func ResetPageHandler(pages *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := pages.Reset(chi.URLParam(r, "pageID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// DELETE /pages/{pageID}
func UnmountPageHandler(pages *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pages.Unmount(chi.URLParam(r, "pageID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// rawValue turns the submitted JSON value into the raw text the matcher
// parses. Strings pass through, numbers keep their literal text, and an
// array of selections is joined with commas.
func rawValue(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", nil
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", fmt.Errorf("value: %w", err)
		}
		return s, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err != nil {
			return "", fmt.Errorf("value: %w", err)
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			s, err := rawValue(it)
			if err != nil {
				return "", err
			}
			if strings.HasPrefix(string(bytes.TrimSpace(it)), "[") {
				return "", fmt.Errorf("value: nested arrays are not allowed")
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", fmt.Errorf("value must be a string, number or array")
		}
		if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
			return "", fmt.Errorf("value: %w", err)
		}
		return n.String(), nil
	}
}
