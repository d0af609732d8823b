package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ochan-dev/ochan/internal/domain"
	"github.com/ochan-dev/ochan/internal/utils"
)

type fileRefJson struct {
	Digest  string `validate:"required" json:"digest"`
	Name    string `json:"name"`
	Spoiler bool   `json:"spoiler"`
}

type postJson struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Subject string        `json:"subject"`
	Body    string        `json:"body"`
	Files   []fileRefJson `validate:"dive" json:"files"`
}

type postCreatedJson struct {
	PostNumber   domain.PostNumber `json:"post_number"`
	ThreadNumber domain.PostNumber `json:"thread_number"`
	AuthorId     string            `json:"author_id"`
	Tripcode     string            `json:"tripcode,omitempty"`
	Adventure    bool              `json:"adventure"`
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, nil)
}

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	threadNo, err := parseIntParam(chi.URLParam(r, "thread"), "thread number")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.submit(w, r, &domain.ThreadRef{Number: threadNo})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, thread *domain.ThreadRef) {
	board := chi.URLParam(r, "board")

	var body postJson
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	client, err := utils.ClientAddr(r)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	draft := domain.PostDraft{
		Author:  body.Name,
		Email:   body.Email,
		Subject: body.Subject,
		Body:    body.Body,
	}
	for _, f := range body.Files {
		draft.Files = append(draft.Files, domain.FileRef{
			Digest:   f.Digest,
			Filename: f.Name,
			Spoiler:  f.Spoiler,
		})
	}

	post, err := h.post.Submit(board, thread, draft, client)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	threadNumber := post.BoardId
	if post.ReplyToBoardId != nil {
		threadNumber = *post.ReplyToBoardId
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, postCreatedJson{
		PostNumber:   post.BoardId,
		ThreadNumber: threadNumber,
		AuthorId:     post.AuthorId,
		Tripcode:     post.AuthorTripcode,
		Adventure:    post.AdventureId != nil,
	})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	postNo, err := parseIntParam(chi.URLParam(r, "post"), "post number")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := h.thread.GetPost(board, postNo)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, newPostView(&post))
}
