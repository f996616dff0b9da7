package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"needsstep/internal/domain"
)

// EntryRepo stores the parent records of one kind.
type EntryRepo struct {
	db *DB
	t  tables
}

const entryColumns = "id, user_id, date, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.Entry, error) {
	var e domain.Entry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, ts(&e.CreatedAt), ts(&e.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindOrCreate returns the (userID, date) entry, inserting it if absent. The
// UNIQUE (user_id, date) constraint makes concurrent callers converge on a
// single row.
func (r *EntryRepo) FindOrCreate(ctx context.Context, userID int64, date string) (*domain.Entry, error) {
	t := now()
	_, err := r.db.sql.ExecContext(ctx,
		r.db.q("INSERT INTO "+r.t.entries+" (user_id, date, created_at, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, date) DO NOTHING"),
		userID, date, t, t,
	)
	if err != nil {
		return nil, err
	}
	e, err := r.GetByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

// GetByDate returns the (userID, date) entry or nil.
func (r *EntryRepo) GetByDate(ctx context.Context, userID int64, date string) (*domain.Entry, error) {
	return scanEntry(r.db.sql.QueryRowContext(ctx,
		r.db.q("SELECT "+entryColumns+" FROM "+r.t.entries+" WHERE user_id = ? AND date = ?"),
		userID, date,
	))
}

// GetByID returns entry id or nil.
func (r *EntryRepo) GetByID(ctx context.Context, id int64) (*domain.Entry, error) {
	return scanEntry(r.db.sql.QueryRowContext(ctx,
		r.db.q("SELECT "+entryColumns+" FROM "+r.t.entries+" WHERE id = ?"),
		id,
	))
}

// ListByUser returns the user's entries in creation order.
func (r *EntryRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Entry, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		r.db.q("SELECT "+entryColumns+" FROM "+r.t.entries+" WHERE user_id = ? ORDER BY id"),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Delete removes entry id; measurements go with it by cascade.
func (r *EntryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, r.db.q("DELETE FROM "+r.t.entries+" WHERE id = ?"), id)
	return err
}

// MeasurementRepo stores the measurements of one kind.
type MeasurementRepo struct {
	db *DB
	t  tables
}

const measurementColumns = "id, entry_id, item_id, user_id, value, created_at, updated_at"

func scanMeasurement(row scanner) (*domain.Measurement, error) {
	var m domain.Measurement
	var item sql.NullInt64
	err := row.Scan(&m.ID, &m.EntryID, &item, &m.UserID, &m.Value, ts(&m.CreatedAt), ts(&m.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.ItemID = nullableID(item)
	return &m, nil
}

// Create inserts m and returns its id.
func (r *MeasurementRepo) Create(ctx context.Context, m domain.Measurement) (int64, error) {
	var id int64
	t := now()
	err := r.db.sql.QueryRowContext(ctx,
		r.db.q("INSERT INTO "+r.t.measures+" (entry_id, item_id, user_id, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"),
		m.EntryID, nullID(m.ItemID), m.UserID, m.Value, t, t,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID returns measurement id or nil.
func (r *MeasurementRepo) GetByID(ctx context.Context, id int64) (*domain.Measurement, error) {
	return scanMeasurement(r.db.sql.QueryRowContext(ctx,
		r.db.q("SELECT "+measurementColumns+" FROM "+r.t.measures+" WHERE id = ?"),
		id,
	))
}

// ListByEntry returns the measurements of entryID in creation order.
func (r *MeasurementRepo) ListByEntry(ctx context.Context, entryID int64) ([]domain.Measurement, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		r.db.q("SELECT "+measurementColumns+" FROM "+r.t.measures+" WHERE entry_id = ? ORDER BY id"),
		entryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// UpdateValue sets the value of measurement id.
func (r *MeasurementRepo) UpdateValue(ctx context.Context, id int64, value float64) error {
	_, err := r.db.sql.ExecContext(ctx,
		r.db.q("UPDATE "+r.t.measures+" SET value = ?, updated_at = ? WHERE id = ?"),
		value, now(), id,
	)
	return err
}

// Delete removes measurement id.
func (r *MeasurementRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, r.db.q("DELETE FROM "+r.t.measures+" WHERE id = ?"), id)
	return err
}
