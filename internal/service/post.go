package service

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/ochan-dev/ochan/internal/domain"
	internal_errors "github.com/ochan-dev/ochan/internal/errors"
	"github.com/ochan-dev/ochan/internal/events"
	"github.com/ochan-dev/ochan/internal/format"
	"github.com/ochan-dev/ochan/internal/geo"
	"github.com/ochan-dev/ochan/internal/logger"
)

type PostService interface {
	Submit(board domain.BoardURI, thread *domain.ThreadRef, draft domain.PostDraft, client netip.Addr) (domain.Post, error)
}

// PostStorage is the transactional backend of a submission. CreatePost
// runs allocation, checksum, adventure consumption, the insert and the
// thread aggregate update as one transaction.
type PostStorage interface {
	GetThreadByNumber(board domain.BoardURI, number domain.PostNumber) (domain.Post, error)
	CreatePost(data domain.PostCreationData) (domain.Post, error)
}

// FileStorage is the upload collaborator. Submission never touches
// file bytes; it links previously stored content by digest.
type FileStorage interface {
	FindFilesByDigest(digests []string) (map[string]domain.StoredFile, error)
	CreateAttachment(att domain.Attachment) error
	IncrementUploadCounts(digests []string) error
}

type PostValidator interface {
	Draft(draft *domain.PostDraft) error
}

type EventPublisher interface {
	PublishThreadNewReply(ev events.ThreadNewReply) error
}

// Post orchestrates submissions: stamping and thread resolution before
// the transaction, the PostStorage transaction itself, then the
// best-effort post-commit effects (attachment linking, new-reply
// event). Nothing after CreatePost returns can fail a submission.
type Post struct {
	storage       PostStorage
	files         FileStorage
	validator     PostValidator
	bus           EventPublisher
	geolocator    geo.Geolocator
	secret        string
	authorCountry bool
}

func NewPost(storage PostStorage, files FileStorage, validator PostValidator, bus EventPublisher, geolocator geo.Geolocator, secret string, authorCountry bool) *Post {
	return &Post{storage, files, validator, bus, geolocator, secret, authorCountry}
}

func (s *Post) Submit(board domain.BoardURI, thread *domain.ThreadRef, draft domain.PostDraft, client netip.Addr) (domain.Post, error) {
	if err := s.validator.Draft(&draft); err != nil {
		return domain.Post{}, err
	}

	now := time.Now().UTC().Round(time.Microsecond) // database rounds to microsecond anyway
	post := domain.Post{
		Author:      draft.Author,
		AuthorEmail: draft.Email,
		Subject:     draft.Subject,
		Body:        draft.Body,
		AuthorIP:    client,
		ReplyLast:   now,
		BumpedLast:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.authorCountry {
		post.AuthorCountry = s.geolocator.CountryCode(client)
	}

	// Resolve the thread reference before anything is allocated: a
	// missing thread must abort with zero side effects.
	parent, err := s.resolveThread(board, thread)
	if err != nil {
		return domain.Post{}, err
	}
	if parent != nil {
		if parent.IsLocked() {
			return domain.Post{}, &internal_errors.ErrorWithStatusCode{
				Message:    "Thread is locked",
				StatusCode: http.StatusLocked,
			}
		}
		post.ReplyTo = &parent.PostId
		threadNo := parent.BoardId
		post.ReplyToBoardId = &threadNo
	}

	// Split a tripcode marker off the name line; only the derived code
	// is ever stored.
	if name, password, secure, ok := format.ParseNameLine(post.Author); ok {
		post.Author = name
		if secure {
			post.AuthorTripcode = format.SecureTripcode(password, s.secret)
		} else {
			post.AuthorTripcode = format.InsecureTripcode(password)
		}
	}

	created, err := s.storage.CreatePost(domain.PostCreationData{
		Board:  board,
		Thread: parent,
		Post:   post,
	})
	if err != nil {
		submissionFailures.WithLabelValues(board).Inc()
		return domain.Post{}, err
	}

	kind := "thread"
	if parent != nil {
		kind = "reply"
	}
	postsCreated.WithLabelValues(board, kind).Inc()
	if created.AdventureId != nil {
		adventuresConsumed.Inc()
	}

	// Post-commit side effects. The post exists once the transaction
	// committed; failures here are logged and must never re-run
	// allocation.
	s.linkAttachments(&created, draft.Files)

	if parent != nil {
		err := s.bus.PublishThreadNewReply(events.ThreadNewReply{
			Board:        board,
			ThreadNumber: parent.BoardId,
			PostId:       created.PostId,
			PostNumber:   created.BoardId,
		})
		if err != nil {
			logger.Log.Warn("failed to publish new-reply event",
				"board", board, "thread", parent.BoardId, "error", err)
		}
	}

	return created, nil
}

func (s *Post) resolveThread(board domain.BoardURI, thread *domain.ThreadRef) (*domain.Post, error) {
	if thread == nil {
		return nil, nil
	}
	if thread.Post != nil {
		if thread.Post.BoardURI != board {
			return nil, &internal_errors.ErrorWithStatusCode{
				Message:    "Thread not found",
				StatusCode: http.StatusNotFound,
			}
		}
		return thread.Post, nil
	}
	resolved, err := s.storage.GetThreadByNumber(board, thread.Number)
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// linkAttachments re-links stored content to the new post by digest.
// Banned digests are skipped, as are duplicates within one submission.
func (s *Post) linkAttachments(post *domain.Post, files []domain.FileRef) {
	if len(files) == 0 {
		return
	}

	digests := make([]string, 0, len(files))
	for _, f := range files {
		if f.Digest != "" {
			digests = append(digests, f.Digest)
		}
	}
	if len(digests) == 0 {
		return
	}

	stored, err := s.files.FindFilesByDigest(digests)
	if err != nil {
		logger.Log.Warn("failed to look up stored files", "post", post.PostId, "error", err)
		return
	}

	seen := make(map[string]bool, len(files))
	var linked []string
	for i, f := range files {
		if f.Digest == "" || seen[f.Digest] {
			continue
		}
		seen[f.Digest] = true

		sf, ok := stored[f.Digest]
		if !ok || sf.Banned {
			continue
		}
		err := s.files.CreateAttachment(domain.Attachment{
			PostId:   post.PostId,
			FileId:   sf.FileId,
			Filename: f.Filename,
			Spoiler:  f.Spoiler,
			Position: i,
		})
		if err != nil {
			logger.Log.Warn("failed to link attachment",
				"post", post.PostId, "digest", f.Digest, "error", err)
			continue
		}
		linked = append(linked, f.Digest)
	}

	if len(linked) > 0 {
		if err := s.files.IncrementUploadCounts(linked); err != nil {
			logger.Log.Warn("failed to bump upload counts", "post", post.PostId, "error", err)
		}
	}
}
