package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"needsstep/internal/domain"
)

// NeedQuestionRepo stores need questions.
type NeedQuestionRepo struct {
	db *DB
}

const questionColumns = "id, stage, sub_stage, content, created_by, created_at, updated_at"

func scanQuestion(row scanner) (*domain.NeedQuestion, error) {
	var q domain.NeedQuestion
	var by sql.NullInt64
	err := row.Scan(&q.ID, &q.Stage, &q.SubStage, &q.Content, &by, ts(&q.CreatedAt), ts(&q.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	q.CreatedBy = nullableID(by)
	return &q, nil
}

func (r *NeedQuestionRepo) list(ctx context.Context, query string, args ...any) ([]domain.NeedQuestion, error) {
	rows, err := r.db.sql.QueryContext(ctx, r.db.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.NeedQuestion{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// Create inserts q and returns its id.
func (r *NeedQuestionRepo) Create(ctx context.Context, q domain.NeedQuestion) (int64, error) {
	var id int64
	t := now()
	err := r.db.sql.QueryRowContext(ctx,
		r.db.q("INSERT INTO need_questions (stage, sub_stage, content, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"),
		q.Stage, q.SubStage, q.Content, nullID(q.CreatedBy), t, t,
	).Scan(&id)
	return id, err
}

// Get returns question id or nil.
func (r *NeedQuestionRepo) Get(ctx context.Context, id int64) (*domain.NeedQuestion, error) {
	return scanQuestion(r.db.sql.QueryRowContext(ctx,
		r.db.q("SELECT "+questionColumns+" FROM need_questions WHERE id = ?"),
		id,
	))
}

// GetItem implements domain.CatalogReader.
func (r *NeedQuestionRepo) GetItem(ctx context.Context, id int64) (domain.CatalogItem, error) {
	q, err := r.Get(ctx, id)
	if err != nil || q == nil {
		return nil, err
	}
	return q, nil
}

// List returns every question.
func (r *NeedQuestionRepo) List(ctx context.Context) ([]domain.NeedQuestion, error) {
	return r.list(ctx, "SELECT "+questionColumns+" FROM need_questions ORDER BY id")
}

// ListByStage returns the questions of stage.
func (r *NeedQuestionRepo) ListByStage(ctx context.Context, stage int) ([]domain.NeedQuestion, error) {
	return r.list(ctx, "SELECT "+questionColumns+" FROM need_questions WHERE stage = ? ORDER BY sub_stage, id", stage)
}

// Update overwrites the editable fields of q.
func (r *NeedQuestionRepo) Update(ctx context.Context, q domain.NeedQuestion) error {
	_, err := r.db.sql.ExecContext(ctx,
		r.db.q("UPDATE need_questions SET stage = ?, sub_stage = ?, content = ?, updated_at = ? WHERE id = ?"),
		q.Stage, q.SubStage, q.Content, now(), q.ID,
	)
	return err
}

// Delete removes question id. Measurements referencing it keep their rows
// with item_id set to NULL.
func (r *NeedQuestionRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, r.db.q("DELETE FROM need_questions WHERE id = ?"), id)
	return err
}

// TargetNameRepo stores target names.
type TargetNameRepo struct {
	db *DB
}

const nameColumns = "id, user_id, content, positive, created_at, updated_at"

func scanName(row scanner) (*domain.TargetName, error) {
	var n domain.TargetName
	var user sql.NullInt64
	err := row.Scan(&n.ID, &user, &n.Content, &n.Positive, ts(&n.CreatedAt), ts(&n.UpdatedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	n.UserID = user.Int64
	return &n, nil
}

// Create inserts n and returns its id.
func (r *TargetNameRepo) Create(ctx context.Context, n domain.TargetName) (int64, error) {
	var id int64
	t := now()
	err := r.db.sql.QueryRowContext(ctx,
		r.db.q("INSERT INTO target_names (user_id, content, positive, created_at, updated_at) VALUES (?, ?, ?, ?, ?) RETURNING id"),
		n.UserID, n.Content, n.Positive, t, t,
	).Scan(&id)
	return id, err
}

// Get returns target name id or nil.
func (r *TargetNameRepo) Get(ctx context.Context, id int64) (*domain.TargetName, error) {
	return scanName(r.db.sql.QueryRowContext(ctx,
		r.db.q("SELECT "+nameColumns+" FROM target_names WHERE id = ?"),
		id,
	))
}

// GetItem implements domain.CatalogReader.
func (r *TargetNameRepo) GetItem(ctx context.Context, id int64) (domain.CatalogItem, error) {
	n, err := r.Get(ctx, id)
	if err != nil || n == nil {
		return nil, err
	}
	return n, nil
}

// ListByUser returns the target names owned by userID.
func (r *TargetNameRepo) ListByUser(ctx context.Context, userID int64) ([]domain.TargetName, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		r.db.q("SELECT "+nameColumns+" FROM target_names WHERE user_id = ? ORDER BY id"),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.TargetName{}
	for rows.Next() {
		n, err := scanName(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// Update overwrites the editable fields of n.
func (r *TargetNameRepo) Update(ctx context.Context, n domain.TargetName) error {
	_, err := r.db.sql.ExecContext(ctx,
		r.db.q("UPDATE target_names SET content = ?, positive = ?, updated_at = ? WHERE id = ?"),
		n.Content, n.Positive, now(), n.ID,
	)
	return err
}

// Delete removes target name id. Measurements referencing it keep their
// rows with item_id set to NULL.
func (r *TargetNameRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, r.db.q("DELETE FROM target_names WHERE id = ?"), id)
	return err
}
