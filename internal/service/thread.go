package service

import (
	"github.com/ochan-dev/ochan/internal/domain"
)

type ThreadService interface {
	Get(board domain.BoardURI, number domain.PostNumber) (domain.Thread, error)
	GetPost(board domain.BoardURI, number domain.PostNumber) (domain.Post, error)
	Index(board domain.BoardURI, page int) ([]domain.Post, error)
	ToggleFlag(board domain.BoardURI, number domain.PostNumber, flag string) (bool, error)
}

type ThreadStorage interface {
	GetThreadByNumber(board domain.BoardURI, number domain.PostNumber) (domain.Post, error)
	GetThreadWithReplies(board domain.BoardURI, number domain.PostNumber) (domain.Thread, error)
	GetPostByNumber(board domain.BoardURI, number domain.PostNumber) (domain.Post, error)
	ListThreads(board domain.BoardURI, page, perPage int) ([]domain.Post, error)
	SetThreadFlag(board domain.BoardURI, number domain.PostNumber, flag string, on bool) error
}

// Thread serves the read paths (thread view through the cache, board
// index) and the moderation flag toggles.
type Thread struct {
	storage        ThreadStorage
	cache          *ThreadCache
	threadsPerPage int
}

func NewThread(storage ThreadStorage, cache *ThreadCache, threadsPerPage int) *Thread {
	return &Thread{storage, cache, threadsPerPage}
}

func (s *Thread) Get(board domain.BoardURI, number domain.PostNumber) (domain.Thread, error) {
	key := ThreadKey(board, number)
	tags := []string{BoardTag(board), TagThreads}
	return s.cache.GetOrLoad(key, tags, func() (domain.Thread, error) {
		return s.storage.GetThreadWithReplies(board, number)
	})
}

func (s *Thread) GetPost(board domain.BoardURI, number domain.PostNumber) (domain.Post, error) {
	return s.storage.GetPostByNumber(board, number)
}

func (s *Thread) Index(board domain.BoardURI, page int) ([]domain.Post, error) {
	if page < 1 {
		page = 1
	}
	return s.storage.ListThreads(board, page, s.threadsPerPage)
}

// ToggleFlag flips one of sticky/bumplock/lock on a thread and evicts
// its cache entry so readers observe the new state immediately.
func (s *Thread) ToggleFlag(board domain.BoardURI, number domain.PostNumber, flag string) (bool, error) {
	thread, err := s.storage.GetThreadByNumber(board, number)
	if err != nil {
		return false, err
	}

	var on bool
	switch flag {
	case domain.ThreadFlagSticky:
		on = !thread.IsStickied()
	case domain.ThreadFlagBumplock:
		on = !thread.IsBumplocked()
	case domain.ThreadFlagLock:
		on = !thread.IsLocked()
	}

	if err := s.storage.SetThreadFlag(board, number, flag, on); err != nil {
		return false, err
	}
	s.cache.Invalidate(ThreadKey(board, number))
	return on, nil
}
