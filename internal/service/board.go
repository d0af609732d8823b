package service

import (
	"regexp"

	"github.com/ochan-dev/ochan/internal/domain"
	internal_errors "github.com/ochan-dev/ochan/internal/errors"
)

type BoardService interface {
	Create(creationData domain.BoardCreationData) error
	Get(board domain.BoardURI) (domain.Board, error)
}

type BoardStorage interface {
	CreateBoard(creationData domain.BoardCreationData) error
	GetBoard(board domain.BoardURI) (domain.Board, error)
}

type Board struct {
	storage BoardStorage
}

func NewBoard(storage BoardStorage) *Board {
	return &Board{storage}
}

// Board slugs are short lowercase alphanumerics; they appear in URLs
// and cache keys.
var boardURIPattern = regexp.MustCompile(`^[a-z0-9]{1,16}$`)

func (s *Board) Create(creationData domain.BoardCreationData) error {
	if !boardURIPattern.MatchString(creationData.BoardURI) {
		return &internal_errors.ErrorWithStatusCode{Message: "Invalid board uri", StatusCode: 400}
	}
	if creationData.Title == "" {
		return &internal_errors.ErrorWithStatusCode{Message: "Board title is required", StatusCode: 400}
	}
	return s.storage.CreateBoard(creationData)
}

func (s *Board) Get(board domain.BoardURI) (domain.Board, error) {
	return s.storage.GetBoard(board)
}
