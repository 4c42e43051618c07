package photo

import (
	"errors"
	"time"
)

// ErrPhotoNotFound is returned when a photo does not exist.
var ErrPhotoNotFound = errors.New("photo not found")

// Photo is an uploaded image attached to a transaction. Upload and
// storage happen elsewhere; this records the resulting URLs.
type Photo struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	PhotoURL      string    `json:"photoUrl"`
	ThumbnailURL  *string   `json:"thumbnailUrl,omitempty"`
	DisplayOrder  int       `json:"displayOrder"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateParams contains parameters for recording an uploaded photo
type CreateParams struct {
	TransactionID string
	UserID        string
	PhotoURL      string
	ThumbnailURL  *string
	DisplayOrder  int
}
