package handler

import (
	"net/http"

	"github.com/ochan-dev/ochan/internal/domain"
	"github.com/ochan-dev/ochan/internal/utils"
)

type boardJson struct {
	BoardURI string `validate:"required" json:"board_uri"`
	Title    string `validate:"required" json:"title"`
}

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var body boardJson
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	err := h.board.Create(domain.BoardCreationData{
		BoardURI: body.BoardURI,
		Title:    body.Title,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
