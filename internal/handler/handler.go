package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ochan-dev/ochan/internal/config"
	"github.com/ochan-dev/ochan/internal/logger"
	"github.com/ochan-dev/ochan/internal/service"
)

type Handler struct {
	board  service.BoardService
	thread service.ThreadService
	post   service.PostService
	cfg    *config.Config
}

func New(board service.BoardService, thread service.ThreadService, post service.PostService, cfg *config.Config) *Handler {
	return &Handler{board, thread, post, cfg}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
