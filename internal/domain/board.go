package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type BoardCreationData struct {
	BoardURI BoardURI
	Title    BoardTitle
}

type Board struct {
	BoardURI   BoardURI
	Title      BoardTitle
	PostsTotal int64 // monotonic counter, source of the next local post number
	LastPostAt *time.Time
	CreatedAt  time.Time
}
