// Package memory implements an in-memory repository for development and testing.
// It mirrors the relational semantics of the SQL stores: unique (user, date)
// entries, cascading entry deletes and set-null on catalog deletes.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"needsstep/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu        sync.Mutex
	users     []*domain.User
	sessions  map[string]*domain.Session
	entries   map[string][]domain.Entry
	measures  map[string][]domain.Measurement
	questions []domain.NeedQuestion
	names     []domain.TargetName
	seq       map[string]int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
		entries:  make(map[string][]domain.Entry),
		measures: make(map[string][]domain.Measurement),
		seq:      make(map[string]int64),
	}
}

// Ensure interfaces are met.
var _ domain.Store = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.EntryRepository = (*EntryRepo)(nil)
var _ domain.MeasurementRepository = (*MeasurementRepo)(nil)
var _ domain.NeedQuestionRepository = (*NeedQuestionRepo)(nil)
var _ domain.TargetNameRepository = (*TargetNameRepo)(nil)

// Users returns the user repository.
func (db *DB) Users() domain.UserRepository { return db }

// Sessions returns the session repository.
func (db *DB) Sessions() domain.SessionRepository { return db.NewSessionRepo() }

// Entries returns the parent-record repository for k.
func (db *DB) Entries(k domain.Kind) domain.EntryRepository {
	return &EntryRepo{db: db, kind: k.Entry}
}

// Measurements returns the measurement repository for k.
func (db *DB) Measurements(k domain.Kind) domain.MeasurementRepository {
	return &MeasurementRepo{db: db, kind: k.Entry}
}

// NeedQuestions returns the need question repository.
func (db *DB) NeedQuestions() domain.NeedQuestionRepository { return &NeedQuestionRepo{db: db} }

// TargetNames returns the target name repository.
func (db *DB) TargetNames() domain.TargetNameRepository { return &TargetNameRepo{db: db} }

// Close is a no-op.
func (db *DB) Close() error { return nil }

// next returns the next id for table. Callers hold db.mu.
func (db *DB) next(table string) int64 {
	db.seq[table]++
	return db.seq[table]
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	u := &domain.User{
		ID:           db.next("users"),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	c := *u
	return &c, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	var n int64
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
			n++
		}
	}
	return n, nil
}
