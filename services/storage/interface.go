package storage

import (
	"context"
	"io"
)

// MaxImageSize caps uploaded images at 5MB.
const MaxImageSize = 5 << 20

// UploadResult identifies an uploaded asset.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// StorageService defines the interface for image storage operations.
type StorageService interface {
	// UploadImage checks that r holds an image no larger than MaxImageSize and stores it in folder.
	UploadImage(ctx context.Context, r io.Reader, folder string) (*UploadResult, error)
	DeleteFile(ctx context.Context, publicID string) error
}
