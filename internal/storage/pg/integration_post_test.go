package pg

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ochan-dev/ochan/internal/domain"
	internal_errors "github.com/ochan-dev/ochan/internal/errors"
)

func TestCreatePostAllocation(t *testing.T) {
	board := createTestBoard(t)

	first := mustCreateThread(t, board, "first")
	second := mustCreateThread(t, board, "second")

	if first.BoardId != 1 || second.BoardId != 2 {
		t.Errorf("Expected sequential numbers 1, 2; got %d, %d", first.BoardId, second.BoardId)
	}

	b, err := storage.GetBoard(board)
	if err != nil {
		t.Fatal(err)
	}
	if b.PostsTotal != 2 {
		t.Errorf("Expected posts_total 2, got %d", b.PostsTotal)
	}
	if b.LastPostAt == nil || !b.LastPostAt.Equal(second.CreatedAt) {
		t.Errorf("Expected last_post_at %v, got %v", second.CreatedAt, b.LastPostAt)
	}
}

func TestCreatePostUnknownBoard(t *testing.T) {
	_, err := storage.CreatePost(domain.PostCreationData{Board: "nosuchboard", Post: stampedPost("text")})

	var statusErr *internal_errors.ErrorWithStatusCode
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 404 {
		t.Errorf("Expected 404, got: %v", err)
	}
}

func TestCreatePostConcurrentAllocation(t *testing.T) {
	board := createTestBoard(t)

	// seed the counter to 5
	for i := 0; i < 5; i++ {
		mustCreateThread(t, board, "seed")
	}

	// two racing submissions must get 6 and 7, in some order
	const racers = 2
	results := make(chan domain.PostNumber, racers)
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := storage.CreatePost(domain.PostCreationData{Board: board, Post: stampedPost("race")})
			if err != nil {
				errs <- err
				return
			}
			results <- created.BoardId
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("Unexpected error: %s", err)
	}

	got := map[domain.PostNumber]bool{}
	for number := range results {
		got[number] = true
	}
	if !got[6] || !got[7] {
		t.Errorf("Expected numbers {6, 7}, got %v", got)
	}

	b, _ := storage.GetBoard(board)
	if b.PostsTotal != 7 {
		t.Errorf("Expected posts_total 7, got %d", b.PostsTotal)
	}
}

func TestCreatePostRollbackRestoresCounter(t *testing.T) {
	board := createTestBoard(t)
	mustCreateThread(t, board, "seed")

	// a dangling reply_to violates the foreign key after allocation
	post := stampedPost("doomed")
	bogus := int64(999999999)
	post.ReplyTo = &bogus
	_, err := storage.CreatePost(domain.PostCreationData{Board: board, Post: post})
	if err == nil {
		t.Fatal("Expected an error")
	}

	b, _ := storage.GetBoard(board)
	if b.PostsTotal != 1 {
		t.Errorf("Failed submission must roll the counter back, posts_total=%d", b.PostsTotal)
	}

	// the number freed by the rollback is handed out again
	next := mustCreateThread(t, board, "next")
	if next.BoardId != 2 {
		t.Errorf("Expected number 2 after rollback, got %d", next.BoardId)
	}
}

func TestCreatePostRecordsChecksum(t *testing.T) {
	board := createTestBoard(t)
	created := mustCreateThread(t, board, "some body text")

	var count int
	err := storage.db.QueryRow(
		"SELECT count(*) FROM post_checksums WHERE board_uri = $1 AND checksum = $2",
		board, created.Checksum(),
	).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected one checksum row, got %d", count)
	}

	// duplicate bodies accumulate rows; tracking never blocks submission
	mustCreateThread(t, board, "some body text")
	storage.db.QueryRow(
		"SELECT count(*) FROM post_checksums WHERE board_uri = $1 AND checksum = $2",
		board, created.Checksum(),
	).Scan(&count)
	if count != 2 {
		t.Errorf("Expected two checksum rows, got %d", count)
	}
}

func TestCreatePostAuthorId(t *testing.T) {
	board := createTestBoard(t)

	op := mustCreateThread(t, board, "op")
	if op.AuthorId == "" || len(op.AuthorId) != 6 {
		t.Fatalf("Unexpected author id: %q", op.AuthorId)
	}

	// same author in the same thread keeps the same id
	reply := mustCreateReply(t, board, &op, stampedPost("reply"))
	if reply.AuthorId != op.AuthorId {
		t.Errorf("Expected stable id within a thread: %q vs %q", op.AuthorId, reply.AuthorId)
	}

	// a different thread gives the same author a different id
	other := mustCreateThread(t, board, "another thread")
	if other.AuthorId == op.AuthorId {
		t.Errorf("Expected a fresh id per thread, got %q twice", op.AuthorId)
	}
}

func TestCreateReplyUpdatesAggregates(t *testing.T) {
	board := createTestBoard(t)
	op := mustCreateThread(t, board, "op")

	reply := stampedPost("reply")
	reply.CreatedAt = reply.CreatedAt.Add(time.Minute)
	reply.UpdatedAt = reply.CreatedAt
	created := mustCreateReply(t, board, &op, reply)

	thread, err := storage.GetThreadByNumber(board, op.BoardId)
	if err != nil {
		t.Fatal(err)
	}
	if thread.ReplyCount != 1 {
		t.Errorf("Expected reply_count 1, got %d", thread.ReplyCount)
	}
	if !thread.ReplyLast.Equal(created.CreatedAt) {
		t.Errorf("Expected reply_last %v, got %v", created.CreatedAt, thread.ReplyLast)
	}
	if !thread.BumpedLast.Equal(created.CreatedAt) {
		t.Errorf("Expected bumped_last %v, got %v", created.CreatedAt, thread.BumpedLast)
	}
	if !thread.UpdatedAt.Equal(created.CreatedAt) {
		t.Errorf("Expected updated_at %v, got %v", created.CreatedAt, thread.UpdatedAt)
	}
}

func TestCreateReplySageDoesNotBump(t *testing.T) {
	board := createTestBoard(t)
	op := mustCreateThread(t, board, "op")

	reply := stampedPost("quiet reply")
	reply.AuthorEmail = "sage"
	reply.CreatedAt = reply.CreatedAt.Add(time.Minute)
	created := mustCreateReply(t, board, &op, reply)

	thread, err := storage.GetThreadByNumber(board, op.BoardId)
	if err != nil {
		t.Fatal(err)
	}
	if !thread.BumpedLast.Equal(op.BumpedLast) {
		t.Errorf("Sage must not bump: bumped_last moved from %v to %v", op.BumpedLast, thread.BumpedLast)
	}
	// reply_last still advances
	if !thread.ReplyLast.Equal(created.CreatedAt) {
		t.Errorf("Expected reply_last %v, got %v", created.CreatedAt, thread.ReplyLast)
	}
	if thread.ReplyCount != 1 {
		t.Errorf("Expected reply_count 1, got %d", thread.ReplyCount)
	}
}

func TestCreateReplyBumplockedDoesNotBump(t *testing.T) {
	board := createTestBoard(t)
	op := mustCreateThread(t, board, "op")

	if err := storage.SetThreadFlag(board, op.BoardId, domain.ThreadFlagBumplock, true); err != nil {
		t.Fatal(err)
	}
	// the service passes the thread as it read it, bumplock included
	lockedOp, err := storage.GetThreadByNumber(board, op.BoardId)
	if err != nil {
		t.Fatal(err)
	}

	reply := stampedPost("reply")
	reply.CreatedAt = reply.CreatedAt.Add(time.Minute)
	mustCreateReply(t, board, &lockedOp, reply)

	thread, _ := storage.GetThreadByNumber(board, op.BoardId)
	if !thread.BumpedLast.Equal(op.BumpedLast) {
		t.Errorf("Bumplocked thread must not bump: %v -> %v", op.BumpedLast, thread.BumpedLast)
	}
	if thread.ReplyCount != 1 {
		t.Errorf("Expected reply_count 1, got %d", thread.ReplyCount)
	}
}

func TestGetThreadByNumber(t *testing.T) {
	board := createTestBoard(t)
	op := mustCreateThread(t, board, "op")
	reply := mustCreateReply(t, board, &op, stampedPost("reply"))

	got, err := storage.GetThreadByNumber(board, op.BoardId)
	if err != nil {
		t.Fatal(err)
	}
	if got.PostId != op.PostId || got.Body != "op" {
		t.Errorf("Unexpected thread: %+v", got)
	}

	// a reply's number is not a thread
	_, err = storage.GetThreadByNumber(board, reply.BoardId)
	var statusErr *internal_errors.ErrorWithStatusCode
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 404 {
		t.Errorf("Expected 404 for a reply number, got: %v", err)
	}

	// but it is still a post
	post, err := storage.GetPostByNumber(board, reply.BoardId)
	if err != nil {
		t.Fatal(err)
	}
	if post.PostId != reply.PostId {
		t.Errorf("Unexpected post: %+v", post)
	}
}

func TestGetThreadWithReplies(t *testing.T) {
	board := createTestBoard(t)
	op := mustCreateThread(t, board, "op")
	first := mustCreateReply(t, board, &op, stampedPost("first"))
	second := mustCreateReply(t, board, &op, stampedPost("second"))

	thread, err := storage.GetThreadWithReplies(board, op.BoardId)
	if err != nil {
		t.Fatal(err)
	}
	if thread.OP.PostId != op.PostId {
		t.Errorf("Unexpected OP: %+v", thread.OP)
	}
	if len(thread.Replies) != 2 {
		t.Fatalf("Expected 2 replies, got %d", len(thread.Replies))
	}
	if thread.Replies[0].PostId != first.PostId || thread.Replies[1].PostId != second.PostId {
		t.Errorf("Replies out of order: %d, %d", thread.Replies[0].PostId, thread.Replies[1].PostId)
	}
	if thread.OP.ReplyCount != 2 {
		t.Errorf("Expected reply_count 2, got %d", thread.OP.ReplyCount)
	}
}

func TestSetThreadFlag(t *testing.T) {
	board := createTestBoard(t)
	op := mustCreateThread(t, board, "op")

	for _, flag := range []string{domain.ThreadFlagSticky, domain.ThreadFlagBumplock, domain.ThreadFlagLock} {
		if err := storage.SetThreadFlag(board, op.BoardId, flag, true); err != nil {
			t.Fatalf("set %s: %s", flag, err)
		}
	}
	thread, _ := storage.GetThreadByNumber(board, op.BoardId)
	if !thread.IsStickied() || !thread.IsBumplocked() || !thread.IsLocked() {
		t.Errorf("Expected all flags on: %+v", thread)
	}

	if err := storage.SetThreadFlag(board, op.BoardId, domain.ThreadFlagLock, false); err != nil {
		t.Fatal(err)
	}
	thread, _ = storage.GetThreadByNumber(board, op.BoardId)
	if thread.IsLocked() {
		t.Error("Expected lock cleared")
	}

	// missing thread
	err := storage.SetThreadFlag(board, 999999, domain.ThreadFlagLock, true)
	var statusErr *internal_errors.ErrorWithStatusCode
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 404 {
		t.Errorf("Expected 404, got: %v", err)
	}
}
