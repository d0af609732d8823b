package domain

import (
	"net/netip"
	"time"
)

// Adventure is a single-use capability token scoped to (board, client).
// Fresh while expires_at is in the future and expended_at is unset;
// once consumed or expired it is inert forever.
type Adventure struct {
	AdventureId  AdventureId
	BoardURI     BoardURI
	AdventurerIP netip.Addr
	Token        string
	ExpiresAt    time.Time
	ExpendedAt   *time.Time
	CreatedAt    time.Time
}

func (a *Adventure) IsFresh(now time.Time) bool {
	return a.ExpendedAt == nil && !a.ExpiresAt.Before(now)
}
