package app

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"

	"needsstep/internal/domain"

	"github.com/charmbracelet/log"
)

// Tracker implements the daily-record use cases shared by needs and targets:
// find-or-create of the per-day entry, ownership-checked access to entries and
// measurements, and the measurement recording workflow.
type Tracker struct {
	kind     domain.Kind
	entries  domain.EntryRepository
	measures domain.MeasurementRepository
	catalog  domain.CatalogReader
	log      *log.Logger
}

// NewTracker creates a Tracker for kind. A nil logger discards output.
func NewTracker(kind domain.Kind, entries domain.EntryRepository, measures domain.MeasurementRepository, catalog domain.CatalogReader, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Tracker{
		kind:     kind,
		entries:  entries,
		measures: measures,
		catalog:  catalog,
		log:      logger.With("kind", kind.Entry),
	}
}

// Kind returns the descriptor this tracker was built for.
func (t *Tracker) Kind() domain.Kind { return t.kind }

// FindByDate returns the caller's entry for date, creating it on first use.
func (t *Tracker) FindByDate(ctx context.Context, userID int64, date string) (*domain.Entry, error) {
	if strings.TrimSpace(date) == "" {
		return nil, invalid("date is required")
	}
	e, err := t.entries.FindOrCreate(ctx, userID, date)
	if err != nil {
		return nil, t.fail("Could not find "+t.kind.Entry, err)
	}
	return e, nil
}

// Mine lists every entry owned by userID.
func (t *Tracker) Mine(ctx context.Context, userID int64) ([]domain.Entry, error) {
	items, err := t.entries.ListByUser(ctx, userID)
	if err != nil {
		return nil, t.fail("Could not find my "+plural(t.kind.Entry), err)
	}
	return items, nil
}

// DeleteByDate removes the caller's entry for date and its measurements.
func (t *Tracker) DeleteByDate(ctx context.Context, userID int64, date string) error {
	e, err := t.entries.GetByDate(ctx, userID, date)
	if err != nil {
		return t.fail("Could not delete "+t.kind.Entry, err)
	}
	if e == nil {
		return notFound(t.kind.Entry)
	}
	if err := t.entries.Delete(ctx, e.ID); err != nil {
		return t.fail("Could not delete "+t.kind.Entry, err)
	}
	t.log.Debug("entry deleted", "id", e.ID, "user", userID)
	return nil
}

// DeleteByID removes entry id if the caller owns it.
func (t *Tracker) DeleteByID(ctx context.Context, userID, id int64) error {
	e, err := t.entries.GetByID(ctx, id)
	if err != nil {
		return t.fail("Could not delete "+t.kind.Entry, err)
	}
	if err := authorize(userID, e != nil, e.OwnerID(), "delete a", t.kind.Entry); err != nil {
		return err
	}
	if err := t.entries.Delete(ctx, id); err != nil {
		return t.fail("Could not delete "+t.kind.Entry, err)
	}
	return nil
}

// DeleteEntry removes the caller's entry by date when date is set, otherwise
// by id.
func (t *Tracker) DeleteEntry(ctx context.Context, userID int64, date string, id int64) error {
	switch {
	case strings.TrimSpace(date) != "":
		return t.DeleteByDate(ctx, userID, date)
	case id > 0:
		return t.DeleteByID(ctx, userID, id)
	}
	return invalid("date or " + t.kind.Entry + "Id is required")
}

// Record stores value against catalog item itemID in the caller's entry for
// date and returns the new measurement id. The entry is resolved before the
// item is looked up.
func (t *Tracker) Record(ctx context.Context, userID int64, date string, itemID int64, value float64) (int64, error) {
	if err := t.checkValue(value); err != nil {
		return 0, err
	}
	e, err := t.FindByDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			return 0, err
		}
		return 0, &Error{Kind: ErrNotFound, Message: capitalize(t.kind.Entry) + " not found", Cause: err}
	}

	item, err := t.catalog.GetItem(ctx, itemID)
	if err != nil {
		return 0, t.fail("Could not create "+t.kind.Measure, err)
	}
	if item == nil {
		return 0, notFound(t.kind.Item)
	}
	if t.kind.OwnedCatalog {
		if err := authorize(userID, true, item.OwnerID(), "add a", t.kind.Item); err != nil {
			return 0, err
		}
	}

	id, err := t.measures.Create(ctx, domain.Measurement{
		EntryID: e.ID,
		ItemID:  &itemID,
		UserID:  userID,
		Value:   value,
	})
	if err != nil {
		return 0, t.fail("Could not create "+t.kind.Measure, err)
	}
	t.log.Debug("measurement recorded", "id", id, "entry", e.ID, "item", itemID)
	return id, nil
}

// Measurement returns measurement id if the caller owns it.
func (t *Tracker) Measurement(ctx context.Context, userID, id int64) (*domain.Measurement, error) {
	m, err := t.measures.GetByID(ctx, id)
	if err != nil {
		return nil, t.fail("Could not find any "+t.kind.Measure, err)
	}
	if err := authorize(userID, m != nil, m.OwnerID(), "find", t.kind.Measure); err != nil {
		return nil, err
	}
	return m, nil
}

// MeasurementsByDate lists the measurements in the caller's entry for date.
// Unlike FindByDate it never creates the entry.
func (t *Tracker) MeasurementsByDate(ctx context.Context, userID int64, date string) ([]domain.Measurement, error) {
	e, err := t.entries.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, t.fail("Could not find any "+t.kind.Measure, err)
	}
	if e == nil {
		return nil, notFound(t.kind.Entry)
	}
	return t.MeasurementsOf(ctx, e)
}

// MeasurementsOf lists the measurements of an entry the caller already holds.
func (t *Tracker) MeasurementsOf(ctx context.Context, e *domain.Entry) ([]domain.Measurement, error) {
	items, err := t.measures.ListByEntry(ctx, e.ID)
	if err != nil {
		return nil, t.fail("Could not find any "+t.kind.Measure, err)
	}
	return items, nil
}

// EditMeasurement replaces the value of measurement id if the caller owns it.
func (t *Tracker) EditMeasurement(ctx context.Context, userID, id int64, value float64) error {
	if err := t.checkValue(value); err != nil {
		return err
	}
	m, err := t.measures.GetByID(ctx, id)
	if err != nil {
		return t.fail("Could not edit "+t.kind.Measure, err)
	}
	if err := authorize(userID, m != nil, m.OwnerID(), "edit a", t.kind.Measure); err != nil {
		return err
	}
	if err := t.measures.UpdateValue(ctx, id, value); err != nil {
		return t.fail("Could not edit "+t.kind.Measure, err)
	}
	return nil
}

// DeleteMeasurement removes measurement id if the caller owns it.
func (t *Tracker) DeleteMeasurement(ctx context.Context, userID, id int64) error {
	m, err := t.measures.GetByID(ctx, id)
	if err != nil {
		return t.fail("Could not delete "+t.kind.Measure, err)
	}
	if err := authorize(userID, m != nil, m.OwnerID(), "delete a", t.kind.Measure); err != nil {
		return err
	}
	if err := t.measures.Delete(ctx, id); err != nil {
		return t.fail("Could not delete "+t.kind.Measure, err)
	}
	return nil
}

// Item resolves the catalog item a measurement points at. It returns nil
// when the reference was cleared or the item is gone.
func (t *Tracker) Item(ctx context.Context, m *domain.Measurement) (domain.CatalogItem, error) {
	if m.ItemID == nil {
		return nil, nil
	}
	item, err := t.catalog.GetItem(ctx, *m.ItemID)
	if err != nil {
		return nil, t.fail("Could not find "+t.kind.Item, err)
	}
	return item, nil
}

func (t *Tracker) checkValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(t.kind.Value + " must be a finite number")
	}
	return nil
}

func (t *Tracker) fail(msg string, cause error) error {
	t.log.Error(msg, "err", cause)
	return failed(msg, cause)
}
