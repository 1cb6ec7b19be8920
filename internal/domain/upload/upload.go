package upload

import (
	"time"

	"github.com/google/uuid"
)

// Upload is a document received from a user.
type Upload struct {
	ID        int64     `json:"id"`
	UploadID  uuid.UUID `json:"uploadId"`
	UserID    int64     `json:"userId"`
	FileName  string    `json:"fileName"`
	MimeType  string    `json:"mimeType"`
	FileSize  int64     `json:"fileSize"`
	FilePath  string    `json:"filePath"`
	CreatedAt time.Time `json:"createdAt"`
}

// New creates an upload record with a fresh id.
func New(userID int64, fileName, mimeType string, size int64, path string) *Upload {
	if mimeType == "" {
		mimeType = "unknown"
	}
	return &Upload{
		UploadID:  uuid.New(),
		UserID:    userID,
		FileName:  fileName,
		MimeType:  mimeType,
		FileSize:  size,
		FilePath:  path,
		CreatedAt: time.Now().UTC(),
	}
}
