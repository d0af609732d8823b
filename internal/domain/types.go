package domain

type (
	BoardURI   = string
	BoardTitle = string

	PostId      = int64 // global primary key, database-assigned, never reused
	PostNumber  = int64 // board-local sequence number
	AdventureId = int64

	FileId       = int64
	AttachmentId = int64
)
