package domain

import (
	"context"
	"time"
)

// TargetName is a named personal goal owned by one user.
type TargetName struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	Positive  bool      `json:"positive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemID implements CatalogItem.
func (n *TargetName) ItemID() int64 { return n.ID }

// OwnerID implements Owned.
func (n *TargetName) OwnerID() int64 {
	if n == nil {
		return 0
	}
	return n.UserID
}

// TargetNamePatch carries only the fields a caller wants to change.
type TargetNamePatch struct {
	Content  *string
	Positive *bool
}

// Apply merges the supplied fields onto n.
func (p TargetNamePatch) Apply(n *TargetName) {
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Positive != nil {
		n.Positive = *p.Positive
	}
}

// TargetNameRepository is the port for target name persistence.
type TargetNameRepository interface {
	CatalogReader
	Create(ctx context.Context, n TargetName) (int64, error)
	Get(ctx context.Context, id int64) (*TargetName, error)
	ListByUser(ctx context.Context, userID int64) ([]TargetName, error)
	Update(ctx context.Context, n TargetName) error
	Delete(ctx context.Context, id int64) error
}
