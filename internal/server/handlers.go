package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/julianstephens/littlesteps/internal/api"
	"github.com/julianstephens/littlesteps/internal/auth"
	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/storage"
)

type handlers struct {
	store storage.Provider
}

// NewHandler builds the routes of the JSON API on top of store.
func NewHandler(store storage.Provider) http.Handler {
	h := handlers{store: store}

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/login", h.login)
	apiMux.HandleFunc("GET /api/state", h.getState)
	apiMux.HandleFunc("PUT /api/state", h.putState)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.Handle("/api/", Chain(apiMux, NoStore()))

	return Chain(mux, RecoverPanic(), LogRequests(), CORS())
}

func (h handlers) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

func (h handlers) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	body := http.MaxBytesReader(w, r.Body, constants.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnauthorized, api.OKResponse{OK: false})
		return
	}

	doc, err := h.store.Load(r.Context())
	if err != nil {
		h.storageFailure(w, "login", err)
		return
	}
	if !auth.Authenticate(doc.Users(), req.Username, req.Password) {
		logger.Debug("Login rejected", "username", req.Username)
		writeJSON(w, http.StatusUnauthorized, api.OKResponse{OK: false})
		return
	}
	writeJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

func (h handlers) getState(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Load(r.Context())
	if err != nil {
		h.storageFailure(w, "load state", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h handlers) putState(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "payload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid"})
		return
	}

	doc, err := models.ParseDocument(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid"})
		return
	}
	if err := h.store.Save(r.Context(), doc); err != nil {
		if errors.Is(err, errors.ErrInvalidDocument) {
			logger.Debug("Rejected state write", "error", err)
			writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid"})
			return
		}
		h.storageFailure(w, "save state", err)
		return
	}
	writeJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

func (h handlers) storageFailure(w http.ResponseWriter, op string, err error) {
	logger.Error("Storage failure", "op", op, "error", err)
	writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "storage unavailable"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}
