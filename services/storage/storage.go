package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"cropconnect/config"
	"cropconnect/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/h2non/filetype"
)

// uploadAPI is the part of the Cloudinary upload API used here.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStorage stores images on Cloudinary.
type CloudinaryStorage struct {
	upload uploadAPI
	root   string
}

// New returns the Cloudinary storage when credentials are configured, and a storage that
// refuses uploads otherwise.
func New(cfg *config.Config) (StorageService, error) {
	if !cfg.CloudinaryConfigured() {
		return Disabled{}, nil
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStorage{upload: &cld.Upload, root: "cropconnect"}, nil
}

// readImage reads at most MaxImageSize bytes and sniffs the content.
func readImage(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, utils.Validation("could not read the uploaded file")
	}
	if len(data) == 0 {
		return nil, utils.Validation("file is empty")
	}
	if len(data) > MaxImageSize {
		return nil, utils.Validation("image must be at most 5MB")
	}
	head := data
	if len(head) > 261 {
		head = head[:261]
	}
	if !filetype.IsImage(head) {
		return nil, utils.Validation("only image files are allowed")
	}
	return data, nil
}

func (s *CloudinaryStorage) UploadImage(ctx context.Context, r io.Reader, folder string) (*UploadResult, error) {
	data, err := readImage(r)
	if err != nil {
		return nil, err
	}
	result, err := s.upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder: s.root + "/" + folder,
	})
	if err != nil {
		return nil, utils.Internal("failed to upload image", err)
	}
	if result.PublicID == "" {
		return nil, utils.Internal("failed to upload image", fmt.Errorf("cloudinary: no public ID returned"))
	}
	return &UploadResult{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func (s *CloudinaryStorage) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", publicID, err)
	}
	return nil
}

// Disabled is used when no image host is configured.
type Disabled struct{}

func (Disabled) UploadImage(context.Context, io.Reader, string) (*UploadResult, error) {
	return nil, utils.Validation("image uploads are not configured")
}

func (Disabled) DeleteFile(context.Context, string) error { return nil }
