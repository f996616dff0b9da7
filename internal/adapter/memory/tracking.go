package memory

import (
	"context"
	"time"

	"needsstep/internal/domain"
)

// EntryRepo stores the parent records of one kind.
type EntryRepo struct {
	db   *DB
	kind string
}

// FindOrCreate returns the (userID, date) entry, inserting it if absent.
// Lookup and insert happen under one lock, so the pair stays unique.
func (r *EntryRepo) FindOrCreate(ctx context.Context, userID int64, date string) (*domain.Entry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, e := range r.db.entries[r.kind] {
		if e.UserID == userID && e.Date == date {
			return &e, nil
		}
	}
	now := time.Now().UTC()
	e := domain.Entry{
		ID:        r.db.next(r.kind),
		UserID:    userID,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.db.entries[r.kind] = append(r.db.entries[r.kind], e)
	return &e, nil
}

// GetByDate returns the (userID, date) entry or nil.
func (r *EntryRepo) GetByDate(ctx context.Context, userID int64, date string) (*domain.Entry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, e := range r.db.entries[r.kind] {
		if e.UserID == userID && e.Date == date {
			return &e, nil
		}
	}
	return nil, nil
}

// GetByID returns entry id or nil.
func (r *EntryRepo) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, e := range r.db.entries[r.kind] {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

// ListByUser returns the user's entries in creation order.
func (r *EntryRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Entry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []domain.Entry{}
	for _, e := range r.db.entries[r.kind] {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Delete removes entry id and cascades to its measurements.
func (r *EntryRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	entries := r.db.entries[r.kind]
	for i, e := range entries {
		if e.ID == id {
			r.db.entries[r.kind] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	kept := r.db.measures[r.kind][:0]
	for _, m := range r.db.measures[r.kind] {
		if m.EntryID != id {
			kept = append(kept, m)
		}
	}
	r.db.measures[r.kind] = kept
	return nil
}

// MeasurementRepo stores the measurements of one kind.
type MeasurementRepo struct {
	db   *DB
	kind string
}

// Create inserts m and returns its id.
func (r *MeasurementRepo) Create(ctx context.Context, m domain.Measurement) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now().UTC()
	m.ID = r.db.next("measure_" + r.kind)
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.ItemID != nil {
		id := *m.ItemID
		m.ItemID = &id
	}
	r.db.measures[r.kind] = append(r.db.measures[r.kind], m)
	return m.ID, nil
}

// GetByID returns measurement id or nil.
func (r *MeasurementRepo) GetByID(ctx context.Context, id int64) (*domain.Measurement, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, m := range r.db.measures[r.kind] {
		if m.ID == id {
			return copyMeasurement(m), nil
		}
	}
	return nil, nil
}

// ListByEntry returns the measurements of entryID in creation order.
func (r *MeasurementRepo) ListByEntry(ctx context.Context, entryID int64) ([]domain.Measurement, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []domain.Measurement{}
	for _, m := range r.db.measures[r.kind] {
		if m.EntryID == entryID {
			out = append(out, *copyMeasurement(m))
		}
	}
	return out, nil
}

// UpdateValue sets the value of measurement id.
func (r *MeasurementRepo) UpdateValue(ctx context.Context, id int64, value float64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ms := r.db.measures[r.kind]
	for i := range ms {
		if ms[i].ID == id {
			ms[i].Value = value
			ms[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return nil
}

// Delete removes measurement id.
func (r *MeasurementRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	ms := r.db.measures[r.kind]
	for i, m := range ms {
		if m.ID == id {
			r.db.measures[r.kind] = append(ms[:i], ms[i+1:]...)
			return nil
		}
	}
	return nil
}

// clearItem nulls the item reference of every measurement of kind pointing
// at itemID. Callers hold db.mu.
func (db *DB) clearItem(kind string, itemID int64) {
	ms := db.measures[kind]
	for i := range ms {
		if ms[i].ItemID != nil && *ms[i].ItemID == itemID {
			ms[i].ItemID = nil
		}
	}
}

func copyMeasurement(m domain.Measurement) *domain.Measurement {
	if m.ItemID != nil {
		id := *m.ItemID
		m.ItemID = &id
	}
	return &m
}
