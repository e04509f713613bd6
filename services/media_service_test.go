package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
	"github.com/mokki-app/mokki/storage"
)

type fakeMediaRepo struct {
	CreateFn        func(ctx context.Context, item *models.MediaItem) error
	GetByIDFn       func(ctx context.Context, id int) (*models.MediaItem, error)
	ListByHouseIDFn func(ctx context.Context, houseID int) ([]*models.MediaItem, error)
	DeleteFn        func(ctx context.Context, id int) error
}

func (f *fakeMediaRepo) Create(ctx context.Context, item *models.MediaItem) error {
	return f.CreateFn(ctx, item)
}

func (f *fakeMediaRepo) GetByID(ctx context.Context, id int) (*models.MediaItem, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeMediaRepo) ListByHouseID(ctx context.Context, houseID int) ([]*models.MediaItem, error) {
	return f.ListByHouseIDFn(ctx, houseID)
}

func (f *fakeMediaRepo) Delete(ctx context.Context, id int) error {
	return f.DeleteFn(ctx, id)
}

type fakeUploader struct {
	UploadFn func(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error)

	uploaded []string
	deleted  []string
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.UploadFn != nil {
		return f.UploadFn(ctx, key, contentType, reader)
	}
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.example/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example/" + key
}

var _ repositories.MediaRepository = (*fakeMediaRepo)(nil)
var _ storage.FileUploader = (*fakeUploader)(nil)

func TestUploadMediaStoresObjectAndRow(t *testing.T) {
	var created *models.MediaItem
	mediaRepo := &fakeMediaRepo{
		CreateFn: func(ctx context.Context, item *models.MediaItem) error {
			item.ID = 5
			created = item
			return nil
		},
	}
	uploader := &fakeUploader{}
	svc := NewMediaService(mediaRepo, memberHouseRepo(), uploader, discardLogger())

	item, err := svc.Upload(context.Background(), 3, UploadMediaInput{
		Filename:    "powder-day.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   1024,
		Reader:      strings.NewReader("fake jpeg bytes"),
	}, 42)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, models.MediaKindPhoto, item.Kind)
	assert.Equal(t, 42, item.UploadedBy)
	assert.True(t, strings.HasPrefix(item.Key, "houses/3/media/"))
	assert.True(t, strings.HasSuffix(item.Key, ".jpg"))
	require.Len(t, uploader.uploaded, 1)
}

func TestUploadMediaRejectsUnsupportedAndOversized(t *testing.T) {
	svc := NewMediaService(&fakeMediaRepo{}, memberHouseRepo(), &fakeUploader{}, discardLogger())

	_, err := svc.Upload(context.Background(), 3, UploadMediaInput{
		Filename:    "notes.pdf",
		ContentType: "application/pdf",
		SizeBytes:   1024,
	}, 42)
	assert.ErrorIs(t, err, ErrMediaUnsupported)

	_, err = svc.Upload(context.Background(), 3, UploadMediaInput{
		Filename:    "raw.mp4",
		ContentType: "video/mp4",
		SizeBytes:   MaxMediaSizeBytes + 1,
	}, 42)
	assert.ErrorIs(t, err, ErrMediaTooLarge)
}

func TestUploadMediaCleansUpOrphanedObject(t *testing.T) {
	mediaRepo := &fakeMediaRepo{
		CreateFn: func(ctx context.Context, item *models.MediaItem) error {
			return assert.AnError
		},
	}
	uploader := &fakeUploader{}
	svc := NewMediaService(mediaRepo, memberHouseRepo(), uploader, discardLogger())

	_, err := svc.Upload(context.Background(), 3, UploadMediaInput{
		Filename:    "powder-day.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   1024,
		Reader:      strings.NewReader("fake jpeg bytes"),
	}, 42)
	require.Error(t, err)
	require.Len(t, uploader.deleted, 1)
	assert.Equal(t, uploader.uploaded[0], uploader.deleted[0])
}

func TestDeleteMediaPermissions(t *testing.T) {
	item := &models.MediaItem{ID: 5, HouseID: 3, UploadedBy: 42, Key: "houses/3/media/x.jpg"}
	newService := func(uploader *fakeUploader, rowDeleted *bool) MediaService {
		mediaRepo := &fakeMediaRepo{
			GetByIDFn: func(ctx context.Context, id int) (*models.MediaItem, error) {
				return item, nil
			},
			DeleteFn: func(ctx context.Context, id int) error {
				*rowDeleted = true
				return nil
			},
		}
		return NewMediaService(mediaRepo, memberHouseRepo(1), uploader, discardLogger())
	}

	t.Run("uploader deletes", func(t *testing.T) {
		var rowDeleted bool
		uploader := &fakeUploader{}
		svc := newService(uploader, &rowDeleted)
		require.NoError(t, svc.Delete(context.Background(), 3, 5, 42))
		assert.True(t, rowDeleted)
		assert.Equal(t, []string{item.Key}, uploader.deleted)
	})

	t.Run("admin deletes", func(t *testing.T) {
		var rowDeleted bool
		svc := newService(&fakeUploader{}, &rowDeleted)
		require.NoError(t, svc.Delete(context.Background(), 3, 5, 1))
		assert.True(t, rowDeleted)
	})

	t.Run("other member cannot delete", func(t *testing.T) {
		var rowDeleted bool
		svc := newService(&fakeUploader{}, &rowDeleted)
		assert.ErrorIs(t, svc.Delete(context.Background(), 3, 5, 2), ErrForbiddenOperation)
		assert.False(t, rowDeleted)
	})
}
