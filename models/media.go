package models

import "time"

type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

// MediaItem is one uploaded b-roll object (photo or video) stored in the
// house bucket. Key is the object-storage key; URL the public location.
type MediaItem struct {
	ID          int       `json:"id"`
	HouseID     int       `json:"house_id"`
	UploadedBy  int       `json:"uploaded_by"`
	Key         string    `json:"-"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Kind        MediaKind `json:"kind"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
