package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/mokki-app/mokki/models"
	"github.com/mokki-app/mokki/repositories"
	"github.com/mokki-app/mokki/storage"
)

// MaxMediaSizeBytes caps one upload. Clients resize images before uploading;
// the server only enforces the cap.
const MaxMediaSizeBytes = 25 << 20

var mediaKinds = map[string]models.MediaKind{
	"image/jpeg":      models.MediaKindPhoto,
	"image/png":       models.MediaKindPhoto,
	"image/webp":      models.MediaKindPhoto,
	"video/mp4":       models.MediaKindVideo,
	"video/quicktime": models.MediaKindVideo,
}

var mediaExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
}

type UploadMediaInput struct {
	Filename    string
	ContentType string
	SizeBytes   int64
	Reader      io.Reader
}

type MediaService interface {
	Upload(ctx context.Context, houseID int, input UploadMediaInput, currentUserID int) (*models.MediaItem, error)
	List(ctx context.Context, houseID, currentUserID int) ([]*models.MediaItem, error)
	Delete(ctx context.Context, houseID, mediaID, currentUserID int) error
}

type mediaService struct {
	mediaRepo repositories.MediaRepository
	houseRepo repositories.HouseRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewMediaService(
	mediaRepo repositories.MediaRepository,
	houseRepo repositories.HouseRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) MediaService {
	return &mediaService{
		mediaRepo: mediaRepo,
		houseRepo: houseRepo,
		uploader:  uploader,
		logger:    logger,
	}
}

func (s *mediaService) Upload(ctx context.Context, houseID int, input UploadMediaInput, currentUserID int) (*models.MediaItem, error) {
	ok, err := s.houseRepo.IsMember(ctx, houseID, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return nil, ErrNotHouseMember
	}

	kind, supported := mediaKinds[input.ContentType]
	if !supported {
		return nil, ErrMediaUnsupported
	}
	if input.SizeBytes <= 0 || input.SizeBytes > MaxMediaSizeBytes {
		return nil, ErrMediaTooLarge
	}

	ext := mediaExtensions[input.ContentType]
	if fromName := path.Ext(input.Filename); fromName != "" {
		ext = fromName
	}
	key := fmt.Sprintf("houses/%d/media/%s%s", houseID, uuid.New().String(), ext)

	result, err := s.uploader.Upload(ctx, key, input.ContentType, io.LimitReader(input.Reader, MaxMediaSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("upload media object: %w", err)
	}

	item := &models.MediaItem{
		HouseID:     houseID,
		UploadedBy:  currentUserID,
		Key:         result.Key,
		URL:         result.Location,
		ContentType: input.ContentType,
		Kind:        kind,
		SizeBytes:   input.SizeBytes,
	}
	if err := s.mediaRepo.Create(ctx, item); err != nil {
		// Best effort: do not leave an orphaned object behind.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete orphaned media object",
				slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("record media item: %w", err)
	}

	return item, nil
}

func (s *mediaService) List(ctx context.Context, houseID, currentUserID int) ([]*models.MediaItem, error) {
	ok, err := s.houseRepo.IsMember(ctx, houseID, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return nil, ErrNotHouseMember
	}

	items, err := s.mediaRepo.ListByHouseID(ctx, houseID)
	if err != nil {
		return nil, fmt.Errorf("list media for house %d: %w", houseID, err)
	}
	return items, nil
}

func (s *mediaService) Delete(ctx context.Context, houseID, mediaID, currentUserID int) error {
	item, err := s.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, repositories.ErrMediaNotFound) {
			return ErrMediaNotFound
		}
		return fmt.Errorf("get media item %d: %w", mediaID, err)
	}
	if item.HouseID != houseID {
		return ErrMediaNotFound
	}

	// The uploader or a house admin may delete.
	if item.UploadedBy != currentUserID {
		role, roleErr := s.houseRepo.MemberRole(ctx, houseID, currentUserID)
		if roleErr != nil || role != models.MemberRoleAdmin {
			return ErrForbiddenOperation
		}
	}

	if err := s.uploader.Delete(ctx, item.Key); err != nil {
		return fmt.Errorf("delete media object %s: %w", item.Key, err)
	}
	if err := s.mediaRepo.Delete(ctx, mediaID); err != nil {
		return fmt.Errorf("delete media item %d: %w", mediaID, err)
	}
	return nil
}
