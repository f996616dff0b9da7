package domain

import (
	"context"
	"time"
)

// Kind describes one daily-tracking module: a per-day parent record, the
// catalog its measurements refer to, and the measurement itself. Needs and
// targets are two instances of the same shape.
type Kind struct {
	// Entry, Item and Measure are lower-case nouns used in messages,
	// e.g. "need", "need question", "measure need".
	Entry   string
	Item    string
	Measure string
	// Value is the API name of the measurement's numeric field.
	Value string
	// OwnedCatalog is set when catalog items belong to a single user and
	// may only be measured by that user.
	OwnedCatalog bool
}

var (
	NeedKind = Kind{
		Entry:   "need",
		Item:    "need question",
		Measure: "measure need",
		Value:   "score",
	}
	TargetKind = Kind{
		Entry:        "target",
		Item:         "target name",
		Measure:      "measure target",
		Value:        "time",
		OwnedCatalog: true,
	}
)

// Entry is the per-(user, date) parent record: a Need or a Target.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnerID implements Owned.
func (e *Entry) OwnerID() int64 {
	if e == nil {
		return 0
	}
	return e.UserID
}

// Measurement is a value recorded against one catalog item within one entry.
// ItemID is nil once the catalog item has been deleted.
type Measurement struct {
	ID        int64     `json:"id"`
	EntryID   int64     `json:"entryId"`
	ItemID    *int64    `json:"itemId"`
	UserID    int64     `json:"userId"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnerID implements Owned.
func (m *Measurement) OwnerID() int64 {
	if m == nil {
		return 0
	}
	return m.UserID
}

// Owned is implemented by every user-owned row.
type Owned interface {
	OwnerID() int64
}

// CatalogItem is the common view of NeedQuestion and TargetName used when
// recording measurements.
type CatalogItem interface {
	Owned
	ItemID() int64
}

// EntryRepository is the port for parent-record persistence. Lookups return
// (nil, nil) when no row matches.
type EntryRepository interface {
	// FindOrCreate returns the unique entry for (userID, date), inserting it
	// first if absent. Concurrent callers observe the same row.
	FindOrCreate(ctx context.Context, userID int64, date string) (*Entry, error)
	GetByDate(ctx context.Context, userID int64, date string) (*Entry, error)
	GetByID(ctx context.Context, id int64) (*Entry, error)
	ListByUser(ctx context.Context, userID int64) ([]Entry, error)
	// Delete removes the entry and, by cascade, its measurements.
	Delete(ctx context.Context, id int64) error
}

// MeasurementRepository is the port for measurement persistence.
type MeasurementRepository interface {
	Create(ctx context.Context, m Measurement) (int64, error)
	GetByID(ctx context.Context, id int64) (*Measurement, error)
	ListByEntry(ctx context.Context, entryID int64) ([]Measurement, error)
	UpdateValue(ctx context.Context, id int64, value float64) error
	Delete(ctx context.Context, id int64) error
}

// CatalogReader resolves a catalog item by id for the measurement workflow.
type CatalogReader interface {
	GetItem(ctx context.Context, id int64) (CatalogItem, error)
}
