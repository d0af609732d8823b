package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/ochan-dev/ochan/internal/domain"
)

// GrantAdventure creates a fresh single-use token for (board, client)
// expiring after ttl. Consumption happens inside CreatePost.
func (s *Storage) GrantAdventure(board domain.BoardURI, client netip.Addr, ttl time.Duration) (domain.Adventure, error) {
	a := domain.Adventure{
		BoardURI:     board,
		AdventurerIP: client,
		Token:        uuid.NewString(),
	}
	err := s.db.QueryRow(`
        INSERT INTO board_adventures (board_uri, adventurer_ip, token, expires_at)
        VALUES ($1, $2, $3, (now() AT TIME ZONE 'utc') + $4::interval)
        RETURNING adventure_id, expires_at, created_at
    `, board, client.String(), a.Token, ttl.String()).Scan(&a.AdventureId, &a.ExpiresAt, &a.CreatedAt)
	if err != nil {
		return domain.Adventure{}, fmt.Errorf("failed to grant adventure: %w", err)
	}
	return a, nil
}

// FindFreshAdventure returns the fresh token for (board, client), or
// nil when none exists. Read-only; consumption is a conditional update
// inside the submission transaction.
func (s *Storage) FindFreshAdventure(board domain.BoardURI, client netip.Addr) (*domain.Adventure, error) {
	var a domain.Adventure
	var adventurerIP string
	var expendedAt sql.NullTime
	err := s.db.QueryRow(`
        SELECT adventure_id, board_uri, adventurer_ip, token, expires_at, expended_at, created_at
        FROM board_adventures
        WHERE board_uri = $1
          AND adventurer_ip = $2
          AND expires_at >= (now() AT TIME ZONE 'utc')
          AND expended_at IS NULL
        ORDER BY adventure_id
        LIMIT 1
    `, board, client.String()).Scan(
		&a.AdventureId, &a.BoardURI, &adventurerIP, &a.Token, &a.ExpiresAt, &expendedAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up adventure: %w", err)
	}
	if expendedAt.Valid {
		a.ExpendedAt = &expendedAt.Time
	}
	addr, err := parseInet(adventurerIP)
	if err != nil {
		return nil, fmt.Errorf("failed to parse adventurer ip: %w", err)
	}
	a.AdventurerIP = addr
	return &a, nil
}

// GetAdventure fetches a token by id regardless of state.
func (s *Storage) GetAdventure(id domain.AdventureId) (domain.Adventure, error) {
	var a domain.Adventure
	var adventurerIP string
	var expendedAt sql.NullTime
	err := s.db.QueryRow(`
        SELECT adventure_id, board_uri, adventurer_ip, token, expires_at, expended_at, created_at
        FROM board_adventures
        WHERE adventure_id = $1
    `, id).Scan(
		&a.AdventureId, &a.BoardURI, &adventurerIP, &a.Token, &a.ExpiresAt, &expendedAt, &a.CreatedAt,
	)
	if err != nil {
		return domain.Adventure{}, fmt.Errorf("failed to fetch adventure: %w", err)
	}
	if expendedAt.Valid {
		a.ExpendedAt = &expendedAt.Time
	}
	addr, err := parseInet(adventurerIP)
	if err != nil {
		return domain.Adventure{}, fmt.Errorf("failed to parse adventurer ip: %w", err)
	}
	a.AdventurerIP = addr
	return a, nil
}
