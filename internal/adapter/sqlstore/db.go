// Package sqlstore implements the domain repositories on database/sql. The
// same queries serve PostgreSQL and SQLite; a Dialect supplies the schema and
// the placeholder style.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"needsstep/internal/domain"
)

// Dialect describes the differences between SQL backends.
type Dialect struct {
	Name string
	// Numbered rewrites "?" placeholders as $1, $2, ...
	Numbered bool
	// Schema is applied in order by Migrate.
	Schema []string
}

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql     *sql.DB
	dialect Dialect
}

var _ domain.Store = (*DB)(nil)

// New wraps an open connection pool.
func New(db *sql.DB, d Dialect) *DB {
	return &DB{sql: db, dialect: d}
}

// Migrate applies the dialect schema. Statements must be idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range d.dialect.Schema {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", d.dialect.Name, err)
		}
	}
	return nil
}

// Truncate deletes every row, children first. Used by tests.
func (d *DB) Truncate(ctx context.Context) error {
	for _, table := range []string{
		"measure_needs", "measure_targets", "needs", "targets",
		"need_questions", "target_names", "sessions", "users",
	} {
		if _, err := d.sql.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Dialect returns the backend name.
func (d *DB) Dialect() string { return d.dialect.Name }

// Users returns the user repository.
func (d *DB) Users() domain.UserRepository { return d }

// Sessions returns the session repository.
func (d *DB) Sessions() domain.SessionRepository { return NewSessionRepo(d) }

// Entries returns the parent-record repository for k.
func (d *DB) Entries(k domain.Kind) domain.EntryRepository {
	return &EntryRepo{db: d, t: tablesFor(k)}
}

// Measurements returns the measurement repository for k.
func (d *DB) Measurements(k domain.Kind) domain.MeasurementRepository {
	return &MeasurementRepo{db: d, t: tablesFor(k)}
}

// NeedQuestions returns the need question repository.
func (d *DB) NeedQuestions() domain.NeedQuestionRepository { return &NeedQuestionRepo{db: d} }

// TargetNames returns the target name repository.
func (d *DB) TargetNames() domain.TargetNameRepository { return &TargetNameRepo{db: d} }

// q adapts a query written with "?" placeholders to the dialect.
func (d *DB) q(query string) string {
	if !d.dialect.Numbered {
		return query
	}
	return Rebind(query)
}

// Rebind rewrites "?" placeholders as $1, $2, ... Queries in this package
// never contain a literal question mark.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// tables names the three tables backing one tracking kind, e.g. needs,
// measure_needs and need_questions.
type tables struct {
	entries  string
	measures string
	items    string
}

func tablesFor(k domain.Kind) tables {
	return tables{
		entries:  ident(k.Entry) + "s",
		measures: ident(k.Measure) + "s",
		items:    ident(k.Item) + "s",
	}
}

func ident(noun string) string {
	return strings.ReplaceAll(noun, " ", "_")
}

// timestamp scans both native time values and the text form some drivers
// return for timestamp columns.
type timestamp struct {
	t *time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		*ts.t = time.Time{}
		return nil
	}
	return fmt.Errorf("sqlstore: cannot scan %T into time", src)
}

func (ts timestamp) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t
			return nil
		}
	}
	return fmt.Errorf("sqlstore: unrecognised time %q", s)
}

func ts(t *time.Time) timestamp { return timestamp{t: t} }

func nullableID(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func now() time.Time {
	return time.Now().UTC()
}
