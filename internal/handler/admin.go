package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ochan-dev/ochan/internal/domain"
	"github.com/ochan-dev/ochan/internal/utils"
)

type flagStateJson struct {
	Flag string `json:"flag"`
	On   bool   `json:"on"`
}

func (h *Handler) ToggleThreadFlag(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	flag := chi.URLParam(r, "flag")

	switch flag {
	case domain.ThreadFlagSticky, domain.ThreadFlagBumplock, domain.ThreadFlagLock:
	default:
		http.Error(w, "Unknown thread flag", http.StatusNotFound)
		return
	}

	threadNo, err := parseIntParam(chi.URLParam(r, "thread"), "thread number")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	on, err := h.thread.ToggleFlag(board, threadNo, flag)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, flagStateJson{Flag: flag, On: on})
}
