package handler

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/ochan-dev/ochan/internal/domain"
)

// Mock services shared by the handler tests.

type MockBoardService struct {
	MockCreate func(creationData domain.BoardCreationData) error
	MockGet    func(board domain.BoardURI) (domain.Board, error)
}

func (m *MockBoardService) Create(creationData domain.BoardCreationData) error {
	if m.MockCreate != nil {
		return m.MockCreate(creationData)
	}
	return nil
}

func (m *MockBoardService) Get(board domain.BoardURI) (domain.Board, error) {
	if m.MockGet != nil {
		return m.MockGet(board)
	}
	return domain.Board{BoardURI: board}, nil
}

type MockThreadService struct {
	MockGet        func(board domain.BoardURI, number domain.PostNumber) (domain.Thread, error)
	MockGetPost    func(board domain.BoardURI, number domain.PostNumber) (domain.Post, error)
	MockIndex      func(board domain.BoardURI, page int) ([]domain.Post, error)
	MockToggleFlag func(board domain.BoardURI, number domain.PostNumber, flag string) (bool, error)
}

func (m *MockThreadService) Get(board domain.BoardURI, number domain.PostNumber) (domain.Thread, error) {
	if m.MockGet != nil {
		return m.MockGet(board, number)
	}
	return domain.Thread{OP: domain.Post{BoardURI: board, BoardId: number}}, nil
}

func (m *MockThreadService) GetPost(board domain.BoardURI, number domain.PostNumber) (domain.Post, error) {
	if m.MockGetPost != nil {
		return m.MockGetPost(board, number)
	}
	return domain.Post{BoardURI: board, BoardId: number}, nil
}

func (m *MockThreadService) Index(board domain.BoardURI, page int) ([]domain.Post, error) {
	if m.MockIndex != nil {
		return m.MockIndex(board, page)
	}
	return nil, nil
}

func (m *MockThreadService) ToggleFlag(board domain.BoardURI, number domain.PostNumber, flag string) (bool, error) {
	if m.MockToggleFlag != nil {
		return m.MockToggleFlag(board, number, flag)
	}
	return true, nil
}

type MockPostService struct {
	MockSubmit func(board domain.BoardURI, thread *domain.ThreadRef, draft domain.PostDraft, client netip.Addr) (domain.Post, error)
}

func (m *MockPostService) Submit(board domain.BoardURI, thread *domain.ThreadRef, draft domain.PostDraft, client netip.Addr) (domain.Post, error) {
	if m.MockSubmit != nil {
		return m.MockSubmit(board, thread, draft, client)
	}
	return domain.Post{PostId: 1001, BoardURI: board, BoardId: 57, AuthorId: "abc123"}, nil
}

// testRouter wires the handler's routes the way the real router does.
func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Post("/boards", h.CreateBoard)
		r.Route("/{board}", func(r chi.Router) {
			r.Get("/", h.GetBoard)
			r.Post("/", h.CreateThread)
			r.Route("/{thread}", func(r chi.Router) {
				r.Get("/", h.GetThread)
				r.Post("/", h.CreateReply)
				r.Get("/{post}", h.GetPost)
			})
		})
		r.Post("/admin/{board}/{thread}/{flag}", h.ToggleThreadFlag)
	})
	return r
}
