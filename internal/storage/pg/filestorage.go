package pg

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/ochan-dev/ochan/internal/domain"
)

// FindFilesByDigest returns the stored files matching the given
// digests, keyed by digest. Unknown digests are simply absent.
func (s *Storage) FindFilesByDigest(digests []string) (map[string]domain.StoredFile, error) {
	rows, err := s.db.Query(`
        SELECT file_id, digest, banned, upload_count
        FROM file_storage
        WHERE digest = ANY($1)
    `, pq.Array(digests))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stored files: %w", err)
	}
	defer rows.Close()

	files := make(map[string]domain.StoredFile)
	for rows.Next() {
		var f domain.StoredFile
		if err := rows.Scan(&f.FileId, &f.Digest, &f.Banned, &f.UploadCount); err != nil {
			return nil, err
		}
		files[f.Digest] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return files, nil
}

func (s *Storage) CreateAttachment(att domain.Attachment) error {
	_, err := s.db.Exec(`
        INSERT INTO attachments (post_id, file_id, filename, spoiler, position)
        VALUES ($1, $2, $3, $4, $5)
    `, att.PostId, att.FileId, att.Filename, att.Spoiler, att.Position)
	if err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}
	return nil
}

func (s *Storage) IncrementUploadCounts(digests []string) error {
	_, err := s.db.Exec(`
        UPDATE file_storage
        SET upload_count = upload_count + 1
        WHERE digest = ANY($1)
    `, pq.Array(digests))
	if err != nil {
		return fmt.Errorf("failed to bump upload counts: %w", err)
	}
	return nil
}

// StoreFile registers a content digest with the file-storage table.
// Used by the upload collaborator and by tests; duplicate digests are
// a no-op returning the existing row.
func (s *Storage) StoreFile(digest string, banned bool) (domain.StoredFile, error) {
	var f domain.StoredFile
	err := s.db.QueryRow(`
        INSERT INTO file_storage (digest, banned)
        VALUES ($1, $2)
        ON CONFLICT (digest) DO UPDATE SET banned = file_storage.banned
        RETURNING file_id, digest, banned, upload_count
    `, digest, banned).Scan(&f.FileId, &f.Digest, &f.Banned, &f.UploadCount)
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("failed to store file: %w", err)
	}
	return f, nil
}
