package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ochan-dev/ochan/internal/utils"
)

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	threadNo, err := parseIntParam(chi.URLParam(r, "thread"), "thread number")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	thread, err := h.thread.Get(board, threadNo)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, newThreadView(&thread))
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid page: must be an integer", http.StatusBadRequest)
			return
		}
		page = parsed
	}

	threads, err := h.thread.Index(board, page)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	views := make([]postView, 0, len(threads))
	for i := range threads {
		views = append(views, newPostView(&threads[i]))
	}
	writeJSON(w, views)
}
