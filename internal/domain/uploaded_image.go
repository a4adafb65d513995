package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type UploadedImage struct {
	ID         int       `json:"id"`
	ObjectKey  string    `json:"object_key"`
	URL        string    `json:"url"`
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedBy null.Int  `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
