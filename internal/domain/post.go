package domain

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/netip"
	"regexp"
	"time"
)

// BumpExemptEmail is the name-line sentinel that suppresses bumping.
const BumpExemptEmail = "sage"

// Thread moderation flags.
const (
	ThreadFlagSticky   = "sticky"
	ThreadFlagBumplock = "bumplock"
	ThreadFlagLock     = "lock"
)

type Post struct {
	PostId   PostId
	BoardURI BoardURI
	BoardId  PostNumber // board-local number, assigned exactly once at creation

	// Parent thread. Nil for an OP.
	ReplyTo        *PostId
	ReplyToBoardId *PostNumber

	// Thread aggregate state, meaningful on OP rows only. reply_count is
	// a materialized value; the authoritative count is always a recount
	// over non-deleted children.
	ReplyCount int
	ReplyLast  time.Time
	BumpedLast time.Time

	Author         string
	AuthorTripcode string
	AuthorEmail    string
	AuthorId       string // per-thread pseudonymous code
	AuthorIP       netip.Addr
	AuthorCountry  string

	Subject string
	Body    string

	AdventureId *AdventureId

	CreatedAt time.Time
	UpdatedAt time.Time

	StickiedAt   *time.Time
	BumplockedAt *time.Time
	LockedAt     *time.Time
	DeletedAt    *time.Time
}

// Thread is an OP with its replies in board_id order.
type Thread struct {
	OP      Post
	Replies []Post
}

// PostDraft is the author-supplied part of a submission. The name line
// may still carry a tripcode marker; the orchestrator splits it off.
type PostDraft struct {
	Author  string
	Email   string
	Subject string
	Body    string
	Files   []FileRef
}

// ThreadRef points at the parent thread of a reply. Post is set when
// the caller already holds the loaded OP, otherwise Number is resolved
// against the board. A nil *ThreadRef means a new thread.
type ThreadRef struct {
	Post   *Post
	Number PostNumber
}

// to iterate thru layers: handler -> service -> storage
type PostCreationData struct {
	Board  BoardURI
	Thread *Post // resolved OP, nil for a new thread
	Post   Post  // stamped draft; BoardId/AuthorId/AdventureId assigned by storage
}

func (p *Post) IsOp() bool {
	return p.ReplyTo == nil
}

// IsBumpless reports whether the author asked this post not to bump.
func (p *Post) IsBumpless() bool {
	return p.AuthorEmail == BumpExemptEmail
}

func (p *Post) IsBumplocked() bool {
	return p.BumplockedAt != nil
}

func (p *Post) IsLocked() bool {
	return p.LockedAt != nil
}

func (p *Post) IsStickied() bool {
	return p.StickiedAt != nil
}

func (p *Post) IsDeleted() bool {
	return p.DeletedAt != nil
}

var nonWord = regexp.MustCompile(`\W+`)

// Checksum returns the binary digest of the normalized body used for
// duplicate tracking. Normalization strips every non-word rune so
// trivial whitespace/punctuation shuffles hash identically.
func (p *Post) Checksum() []byte {
	normalized := nonWord.ReplaceAllString(p.Body, "")
	sum := sha1.Sum([]byte(normalized))
	return sum[:]
}

// MakeAuthorId derives the short per-thread pseudonym for an author.
// thread is the OP's board-local number; for an OP it is the post's own
// number. Same (secret, board, thread, ip) always yields the same code.
func MakeAuthorId(secret string, board BoardURI, thread PostNumber, ip netip.Addr) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%d-%s", secret, board, thread, ip)))
	return hex.EncodeToString(sum[:])[12:18]
}

func (p *Post) String() string {
	return fmt.Sprintf("[post_id:%d, board:%s, no:%d, author:%s, created:%s]",
		p.PostId, p.BoardURI, p.BoardId, p.Author, p.CreatedAt.Format(time.StampMilli))
}
