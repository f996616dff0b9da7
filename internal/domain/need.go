package domain

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"
)

const (
	minQuestionContent = 5
	maxQuestionContent = 140
)

// ErrQuestionContentLength is returned when a need question's content falls
// outside the allowed length.
var ErrQuestionContentLength = errors.New("content must be between 5 and 140 characters")

// NeedQuestion is an admin-managed prompt shared by every user.
type NeedQuestion struct {
	ID        int64     `json:"id"`
	Stage     int       `json:"stage"`
	SubStage  int       `json:"subStage"`
	Content   string    `json:"content"`
	CreatedBy *int64    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemID implements CatalogItem.
func (q *NeedQuestion) ItemID() int64 { return q.ID }

// OwnerID implements Owned. Need questions are global, so the owner is always 0.
func (q *NeedQuestion) OwnerID() int64 { return 0 }

// Validate checks the content length constraint.
func (q *NeedQuestion) Validate() error {
	n := utf8.RuneCountInString(q.Content)
	if n < minQuestionContent || n > maxQuestionContent {
		return ErrQuestionContentLength
	}
	return nil
}

// NeedQuestionPatch carries only the fields a caller wants to change.
type NeedQuestionPatch struct {
	Stage    *int
	SubStage *int
	Content  *string
}

// Apply merges the supplied fields onto q.
func (p NeedQuestionPatch) Apply(q *NeedQuestion) {
	if p.Stage != nil {
		q.Stage = *p.Stage
	}
	if p.SubStage != nil {
		q.SubStage = *p.SubStage
	}
	if p.Content != nil {
		q.Content = *p.Content
	}
}

// NeedQuestionRepository is the port for need question persistence.
type NeedQuestionRepository interface {
	CatalogReader
	Create(ctx context.Context, q NeedQuestion) (int64, error)
	Get(ctx context.Context, id int64) (*NeedQuestion, error)
	List(ctx context.Context) ([]NeedQuestion, error)
	ListByStage(ctx context.Context, stage int) ([]NeedQuestion, error)
	Update(ctx context.Context, q NeedQuestion) error
	// Delete removes the question; measurements keep their rows with a null
	// item reference.
	Delete(ctx context.Context, id int64) error
}
