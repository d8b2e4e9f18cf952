package saved_filter

import (
	"errors"
	"time"

	"go-agrofleet/internal/features/inventory"
	ft "go-agrofleet/pkg/filtertoken"
)

var (
	ErrFilterNotFound   = errors.New("saved filter not found")
	ErrForbidden        = errors.New("saved filter belongs to another user")
	ErrEmptyFilter      = errors.New("saved filter has no criteria")
	ErrResourceMismatch = errors.New("saved filter targets another resource")
	ErrNameRequired     = errors.New("name is required")
)

// SavedFilter is a named set of filter tokens a user can restore later
type SavedFilter struct {
	ID          string             `json:"id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Resource    inventory.Resource `json:"resource" bson:"resource"`
	UserID      string             `json:"user_id" bson:"user_id"`
	IsPublic    bool               `json:"is_public" bson:"is_public"`
	IsDefault   bool               `json:"is_default" bson:"is_default"`
	Criteria    []ft.Criterion     `json:"criteria" bson:"criteria"`
	Labels      []string           `json:"labels" bson:"-"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateRequest saves either the active tokens of a session or explicit criteria
type CreateRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	IsPublic    bool               `json:"is_public"`
	IsDefault   bool               `json:"is_default"`
	SessionID   string             `json:"session_id"`
	Resource    inventory.Resource `json:"resource"`
	Criteria    []ft.Criterion     `json:"criteria"`
}

// UpdateRequest changes the descriptive fields of a saved filter
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
	IsDefault   *bool   `json:"is_default"`
}

func (f *SavedFilter) fillLabels() {
	f.Labels = make([]string, 0, len(f.Criteria))
	for _, c := range f.Criteria {
		if c.Range != nil {
			f.Labels = append(f.Labels, ft.Label(c.Field, *c.Range))
		} else {
			f.Labels = append(f.Labels, ft.Label(c.Field, c.Value))
		}
	}
}
