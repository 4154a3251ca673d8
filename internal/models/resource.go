package models

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Resource types
const (
	ResourceArticle = "ARTICLE"
	ResourceVideo   = "VIDEO"
	ResourcePDF     = "PDF"
	ResourceAudio   = "AUDIO"
	ResourceOther   = "OTHER"
)

// ValidResourceType reports whether t is one of the known resource types.
func ValidResourceType(t string) bool {
	switch t {
	case ResourceArticle, ResourceVideo, ResourcePDF, ResourceAudio, ResourceOther:
		return true
	}
	return false
}

var (
	ErrResourceNoContent   = errors.New("either a file or an external link is required")
	ErrResourceBothContent = errors.New("provide a file or an external link, not both")
)

// Resource is an admin-curated library item. Exactly one of FileURL/Link is set.
type Resource struct {
	ID           uuid.UUID      `json:"id"`
	Title        string         `json:"title"`
	Description  sql.NullString `json:"-"`
	FileURL      sql.NullString `json:"-"`
	Link         sql.NullString `json:"-"`
	ResourceType string         `json:"resource_type"`
	UploadedBy   uuid.NullUUID  `json:"-"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ValidateResourceContent enforces the file-xor-link rule at validation time.
func ValidateResourceContent(fileURL, link string) error {
	hasFile := strings.TrimSpace(fileURL) != ""
	hasLink := strings.TrimSpace(link) != ""
	if hasFile && hasLink {
		return ErrResourceBothContent
	}
	if !hasFile && !hasLink {
		return ErrResourceNoContent
	}
	return nil
}

// ToJSON returns the JSON-safe view of a resource.
func (r *Resource) ToJSON() map[string]interface{} {
	out := map[string]interface{}{
		"id":            r.ID.String(),
		"title":         r.Title,
		"resource_type": r.ResourceType,
		"uploaded_at":   r.UploadedAt,
		"updated_at":    r.UpdatedAt,
	}
	if r.Description.Valid {
		out["description"] = r.Description.String
	}
	if r.FileURL.Valid {
		out["file_url"] = r.FileURL.String
	}
	if r.Link.Valid {
		out["link"] = r.Link.String
	}
	if r.UploadedBy.Valid {
		out["uploaded_by"] = r.UploadedBy.UUID.String()
	}
	return out
}
