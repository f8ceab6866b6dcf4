package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"cropconnect/utils"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpload struct {
	folder    string
	size      int
	destroyed []string
}

func (f *fakeUpload) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	r := file.(*bytes.Reader)
	f.size = r.Len()
	f.folder = params.Folder
	return &uploader.UploadResult{PublicID: "cropconnect/tractors/abc", SecureURL: "https://res.cloudinary.com/demo/abc.png"}, nil
}

func (f *fakeUpload) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = append(f.destroyed, params.PublicID)
	return &uploader.DestroyResult{Result: "ok"}, nil
}

func png(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	return data
}

func TestUploadImage(t *testing.T) {
	fake := &fakeUpload{}
	s := &CloudinaryStorage{upload: fake, root: "cropconnect"}

	res, err := s.UploadImage(context.Background(), bytes.NewReader(png(1024)), "tractors")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/abc.png", res.URL)
	assert.Equal(t, "cropconnect/tractors/abc", res.PublicID)
	assert.Equal(t, "cropconnect/tractors", fake.folder)
	assert.Equal(t, 1024, fake.size)

	require.NoError(t, s.DeleteFile(context.Background(), res.PublicID))
	assert.Equal(t, []string{res.PublicID}, fake.destroyed)
}

func TestUploadImageRejectsBadInput(t *testing.T) {
	s := &CloudinaryStorage{upload: &fakeUpload{}, root: "cropconnect"}
	ctx := context.Background()

	_, err := s.UploadImage(ctx, strings.NewReader("just some text"), "profiles")
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = s.UploadImage(ctx, bytes.NewReader(nil), "profiles")
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = s.UploadImage(ctx, bytes.NewReader(png(MaxImageSize+1)), "profiles")
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestDisabledStorage(t *testing.T) {
	_, err := Disabled{}.UploadImage(context.Background(), bytes.NewReader(png(10)), "profiles")
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}
