package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/ochan-dev/ochan/internal/domain"
	internal_errors "github.com/ochan-dev/ochan/internal/errors"
	"github.com/ochan-dev/ochan/internal/logger"
)

const postColumns = `
    post_id, board_uri, board_id, reply_to, reply_to_board_id,
    reply_count, reply_last, bumped_last,
    author, author_tripcode, author_email, author_id, author_ip, author_country,
    subject, body, adventure_id,
    created_at, updated_at, stickied_at, bumplocked_at, locked_at, deleted_at`

// CreatePost runs the whole submission transaction: local id
// allocation under the board row lock, checksum recording, adventure
// consumption, the post insert, and the parent thread's aggregate
// update. Any failure past allocation rolls all of it back, counter
// included.
func (s *Storage) CreatePost(data domain.PostCreationData) (domain.Post, error) {
	p := data.Post

	tx, err := s.db.Begin()
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Allocation. A single UPDATE both takes the board row's exclusive
	// lock (held until commit, serializing same-board submissions) and
	// returns the post-increment counter value. The unique joint index
	// on (board_uri, board_id) backstops this.
	var total int64
	err = tx.QueryRow(`
        UPDATE boards
        SET posts_total = posts_total + 1, last_post_at = $2
        WHERE board_uri = $1
        RETURNING posts_total
    `, data.Board, p.CreatedAt).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, &internal_errors.ErrorWithStatusCode{
				Message:    "Board not found",
				StatusCode: http.StatusNotFound,
			}
		}
		return domain.Post{}, fmt.Errorf("failed to allocate post number: %w", err)
	}

	// Duplicate tracking is best-effort bookkeeping: a failed insert is
	// rolled back to the savepoint, logged, and the submission goes on.
	if _, err := tx.Exec("SAVEPOINT record_checksum"); err != nil {
		return domain.Post{}, fmt.Errorf("failed to create savepoint: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO post_checksums(board_uri, checksum) VALUES ($1, $2)",
		data.Board, p.Checksum(),
	); err != nil {
		logger.Log.Warn("checksum recording failed", "board", data.Board, "error", err)
		if _, err := tx.Exec("ROLLBACK TO SAVEPOINT record_checksum"); err != nil {
			return domain.Post{}, fmt.Errorf("failed to roll back checksum savepoint: %w", err)
		}
	}

	// Consume at most one fresh adventure for (board, client). The
	// conditional update is atomic: only one transaction can flip
	// expended_at from NULL, so a racing submitter simply gets no row.
	var adventureId sql.NullInt64
	err = tx.QueryRow(`
        UPDATE board_adventures
        SET expended_at = $3
        WHERE adventure_id = (
            SELECT adventure_id
            FROM board_adventures
            WHERE board_uri = $1
              AND adventurer_ip = $2
              AND expires_at >= $3
              AND expended_at IS NULL
            ORDER BY adventure_id
            LIMIT 1
        ) AND expended_at IS NULL
        RETURNING adventure_id
    `, data.Board, p.AuthorIP.String(), p.CreatedAt).Scan(&adventureId)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.Post{}, fmt.Errorf("failed to consume adventure: %w", err)
	}
	if adventureId.Valid {
		p.AdventureId = &adventureId.Int64
	}

	p.BoardURI = data.Board
	p.BoardId = total
	threadNo := p.BoardId
	if p.ReplyToBoardId != nil {
		threadNo = *p.ReplyToBoardId
	}
	p.AuthorId = domain.MakeAuthorId(s.cfg.AuthorIdKey(), data.Board, threadNo, p.AuthorIP)

	err = tx.QueryRow(`
        INSERT INTO posts (
            board_uri, board_id, reply_to, reply_to_board_id,
            reply_last, bumped_last,
            author, author_tripcode, author_email, author_id, author_ip, author_country,
            subject, body, adventure_id, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING post_id
    `,
		p.BoardURI, p.BoardId, p.ReplyTo, p.ReplyToBoardId,
		p.ReplyLast, p.BumpedLast,
		p.Author, p.AuthorTripcode, p.AuthorEmail, p.AuthorId, p.AuthorIP.String(), p.AuthorCountry,
		p.Subject, p.Body, p.AdventureId, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.PostId)
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to insert post: %w", err)
	}

	// Reply: refresh the parent's aggregate state with a targeted
	// by-primary-key update. reply_count is an authoritative recount,
	// not an increment, so prior drift self-heals. Bump eligibility is
	// decided from the thread as read before this reply existed.
	if data.Thread != nil {
		bump := !p.IsBumpless() && !data.Thread.IsBumplocked()
		_, err = tx.Exec(`
            UPDATE posts
            SET updated_at  = $2,
                reply_last  = $2,
                reply_count = (SELECT count(*) FROM posts WHERE reply_to = $1 AND deleted_at IS NULL),
                bumped_last = CASE WHEN $3 THEN $2 ELSE bumped_last END
            WHERE post_id = $1
        `, data.Thread.PostId, p.CreatedAt, bump)
		if err != nil {
			return domain.Post{}, fmt.Errorf("failed to update thread aggregates: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Post{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return p, nil
}

// GetThreadByNumber resolves a board-local number to its OP row.
func (s *Storage) GetThreadByNumber(board domain.BoardURI, number domain.PostNumber) (domain.Post, error) {
	row := s.db.QueryRow(`
        SELECT `+postColumns+`
        FROM posts
        WHERE board_uri = $1 AND board_id = $2 AND reply_to IS NULL AND deleted_at IS NULL
    `, board, number)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, &internal_errors.ErrorWithStatusCode{
				Message:    "Thread not found",
				StatusCode: http.StatusNotFound,
			}
		}
		return domain.Post{}, fmt.Errorf("failed to fetch thread: %w", err)
	}
	return post, nil
}

func (s *Storage) GetPostByNumber(board domain.BoardURI, number domain.PostNumber) (domain.Post, error) {
	row := s.db.QueryRow(`
        SELECT `+postColumns+`
        FROM posts
        WHERE board_uri = $1 AND board_id = $2 AND deleted_at IS NULL
    `, board, number)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, &internal_errors.ErrorWithStatusCode{
				Message:    "Post not found",
				StatusCode: http.StatusNotFound,
			}
		}
		return domain.Post{}, fmt.Errorf("failed to fetch post: %w", err)
	}
	return post, nil
}

// GetThreadWithReplies loads an OP and its non-deleted replies in
// board_id order. This is the loader behind the thread view cache.
func (s *Storage) GetThreadWithReplies(board domain.BoardURI, number domain.PostNumber) (domain.Thread, error) {
	op, err := s.GetThreadByNumber(board, number)
	if err != nil {
		return domain.Thread{}, err
	}

	rows, err := s.db.Query(`
        SELECT `+postColumns+`
        FROM posts
        WHERE reply_to = $1 AND deleted_at IS NULL
        ORDER BY post_id ASC
    `, op.PostId)
	if err != nil {
		return domain.Thread{}, fmt.Errorf("failed to fetch replies: %w", err)
	}
	defer rows.Close()

	var replies []domain.Post
	for rows.Next() {
		reply, err := scanPost(rows)
		if err != nil {
			return domain.Thread{}, err
		}
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return domain.Thread{}, fmt.Errorf("rows iteration error: %w", err)
	}

	return domain.Thread{OP: op, Replies: replies}, nil
}

// SetThreadFlag sets or clears one of the thread-state timestamps.
// The caller names the flag; the column is resolved here so no user
// input ever reaches the query text.
func (s *Storage) SetThreadFlag(board domain.BoardURI, number domain.PostNumber, flag string, on bool) error {
	var column string
	switch flag {
	case domain.ThreadFlagSticky:
		column = "stickied_at"
	case domain.ThreadFlagBumplock:
		column = "bumplocked_at"
	case domain.ThreadFlagLock:
		column = "locked_at"
	default:
		return fmt.Errorf("unknown thread flag %q", flag)
	}

	value := "NULL"
	if on {
		value = "now() AT TIME ZONE 'utc'"
	}
	result, err := s.db.Exec(fmt.Sprintf(`
        UPDATE posts
        SET %s = %s
        WHERE board_uri = $1 AND board_id = $2 AND reply_to IS NULL AND deleted_at IS NULL
    `, column, value), board, number)
	if err != nil {
		return fmt.Errorf("failed to update thread flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &internal_errors.ErrorWithStatusCode{
			Message:    "Thread not found",
			StatusCode: http.StatusNotFound,
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	var replyTo, replyToBoardId, adventureId sql.NullInt64
	var authorIP string
	var stickiedAt, bumplockedAt, lockedAt, deletedAt sql.NullTime

	err := row.Scan(
		&p.PostId, &p.BoardURI, &p.BoardId, &replyTo, &replyToBoardId,
		&p.ReplyCount, &p.ReplyLast, &p.BumpedLast,
		&p.Author, &p.AuthorTripcode, &p.AuthorEmail, &p.AuthorId, &authorIP, &p.AuthorCountry,
		&p.Subject, &p.Body, &adventureId,
		&p.CreatedAt, &p.UpdatedAt, &stickiedAt, &bumplockedAt, &lockedAt, &deletedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}

	if replyTo.Valid {
		p.ReplyTo = &replyTo.Int64
	}
	if replyToBoardId.Valid {
		p.ReplyToBoardId = &replyToBoardId.Int64
	}
	if adventureId.Valid {
		p.AdventureId = &adventureId.Int64
	}
	if stickiedAt.Valid {
		p.StickiedAt = &stickiedAt.Time
	}
	if bumplockedAt.Valid {
		p.BumplockedAt = &bumplockedAt.Time
	}
	if lockedAt.Valid {
		p.LockedAt = &lockedAt.Time
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}

	addr, err := parseInet(authorIP)
	if err != nil {
		return domain.Post{}, fmt.Errorf("failed to parse author ip: %w", err)
	}
	p.AuthorIP = addr

	return p, nil
}
