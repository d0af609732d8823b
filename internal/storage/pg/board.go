package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"

	"github.com/ochan-dev/ochan/internal/domain"
	internal_errors "github.com/ochan-dev/ochan/internal/errors"
)

func (s *Storage) CreateBoard(creationData domain.BoardCreationData) error {
	_, err := s.db.Exec(
		"INSERT INTO boards(board_uri, title) VALUES($1, $2)",
		creationData.BoardURI, creationData.Title,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &internal_errors.ErrorWithStatusCode{
				Message:    "Board already exists",
				StatusCode: http.StatusConflict,
			}
		}
		return fmt.Errorf("failed to insert board: %w", err)
	}
	return nil
}

func (s *Storage) GetBoard(board domain.BoardURI) (domain.Board, error) {
	var b domain.Board
	var lastPostAt sql.NullTime
	err := s.db.QueryRow(`
        SELECT board_uri, title, posts_total, last_post_at, created_at
        FROM boards
        WHERE board_uri = $1
    `, board).Scan(&b.BoardURI, &b.Title, &b.PostsTotal, &lastPostAt, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Board{}, &internal_errors.ErrorWithStatusCode{
				Message:    "Board not found",
				StatusCode: http.StatusNotFound,
			}
		}
		return domain.Board{}, fmt.Errorf("failed to fetch board: %w", err)
	}
	if lastPostAt.Valid {
		b.LastPostAt = &lastPostAt.Time
	}
	return b, nil
}

// ListThreads returns one page of a board's OP rows, stickied threads
// first, the rest in bump order.
func (s *Storage) ListThreads(board domain.BoardURI, page, perPage int) ([]domain.Post, error) {
	if _, err := s.GetBoard(board); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
        SELECT `+postColumns+`
        FROM posts
        WHERE board_uri = $1 AND reply_to IS NULL AND deleted_at IS NULL
        ORDER BY (stickied_at IS NOT NULL) DESC, bumped_last DESC, board_id DESC
        LIMIT $2 OFFSET $3
    `, board, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch board index: %w", err)
	}
	defer rows.Close()

	var threads []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
