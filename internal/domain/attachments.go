package domain

// FileRef references previously stored content by digest. The actual
// bytes live with the file-storage collaborator; submission only links.
type FileRef struct {
	Digest   string
	Filename string
	Spoiler  bool
}

// StoredFile is the file-storage collaborator's view of stored content.
type StoredFile struct {
	FileId      FileId
	Digest      string
	Banned      bool
	UploadCount int
}

// Attachment links a post to stored content
type Attachment struct {
	AttachmentId AttachmentId
	PostId       PostId
	FileId       FileId
	Filename     string
	Spoiler      bool
	Position     int
}
