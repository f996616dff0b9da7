package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"needsstep/internal/domain"
)

const userColumns = "id, username, password_hash, role, created_at"

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, ts(&u.CreatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// GetByUsername retrieves a user by username.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		d.q("SELECT "+userColumns+" FROM users WHERE username = ?"),
		username,
	))
}

// GetByID retrieves a user by ID.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		d.q("SELECT "+userColumns+" FROM users WHERE id = ?"),
		id,
	))
}

// Create creates a new user.
func (d *DB) Create(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		d.q("INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?) RETURNING "+userColumns),
		username, passwordHash, string(role), now(),
	))
}

// Count returns the total number of users.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		r.db.q("INSERT INTO sessions (user_id, token, user_agent, expires_at, created_at) VALUES (?, ?, ?, ?, ?)"),
		userID, token, userAgent, expiresAt.UTC(), now(),
	)
	return err
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		r.db.q("SELECT token, user_id, user_agent, expires_at, created_at FROM sessions WHERE token = ?"),
		token,
	).Scan(&s.Token, &s.UserID, &s.UserAgent, ts(&s.ExpiresAt), ts(&s.CreatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, r.db.q("DELETE FROM sessions WHERE token = ?"), token)
	return err
}

// DeleteExpired deletes all expired sessions and returns how many were removed.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.sql.ExecContext(ctx, r.db.q("DELETE FROM sessions WHERE expires_at < ?"), now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
