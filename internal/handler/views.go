package handler

import (
	"time"

	"github.com/ochan-dev/ochan/internal/domain"
)

// postView is the public shape of a post. The author's address and the
// adventure token are never exposed.
type postView struct {
	No        domain.PostNumber `json:"no"`
	ReplyTo   domain.PostNumber `json:"reply_to,omitempty"`
	Name      string            `json:"name"`
	Tripcode  string            `json:"tripcode,omitempty"`
	Email     string            `json:"email,omitempty"`
	AuthorId  string            `json:"author_id"`
	Country   string            `json:"country,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	Body      string            `json:"body"`
	CreatedAt time.Time         `json:"created_at"`

	// thread aggregates, zero for replies
	ReplyCount int        `json:"reply_count,omitempty"`
	BumpedLast *time.Time `json:"bumped_last,omitempty"`
	Sticky     bool       `json:"sticky,omitempty"`
	Bumplocked bool       `json:"bumplocked,omitempty"`
	Locked     bool       `json:"locked,omitempty"`
}

type threadView struct {
	OP      postView   `json:"op"`
	Replies []postView `json:"replies"`
}

func newPostView(p *domain.Post) postView {
	v := postView{
		No:        p.BoardId,
		Name:      p.Author,
		Tripcode:  p.AuthorTripcode,
		Email:     p.AuthorEmail,
		AuthorId:  p.AuthorId,
		Country:   p.AuthorCountry,
		Subject:   p.Subject,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
	}
	if p.ReplyToBoardId != nil {
		v.ReplyTo = *p.ReplyToBoardId
	}
	if p.IsOp() {
		v.ReplyCount = p.ReplyCount
		bumped := p.BumpedLast
		v.BumpedLast = &bumped
		v.Sticky = p.IsStickied()
		v.Bumplocked = p.IsBumplocked()
		v.Locked = p.IsLocked()
	}
	return v
}

func newThreadView(t *domain.Thread) threadView {
	v := threadView{
		OP:      newPostView(&t.OP),
		Replies: make([]postView, 0, len(t.Replies)),
	}
	for i := range t.Replies {
		v.Replies = append(v.Replies, newPostView(&t.Replies[i]))
	}
	return v
}
