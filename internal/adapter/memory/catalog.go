package memory

import (
	"context"
	"time"

	"needsstep/internal/domain"
)

// NeedQuestionRepo stores need questions.
type NeedQuestionRepo struct {
	db *DB
}

// Create inserts q and returns its id.
func (r *NeedQuestionRepo) Create(ctx context.Context, q domain.NeedQuestion) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now().UTC()
	q.ID = r.db.next("need_questions")
	q.CreatedAt = now
	q.UpdatedAt = now
	r.db.questions = append(r.db.questions, q)
	return q.ID, nil
}

// Get returns question id or nil.
func (r *NeedQuestionRepo) Get(ctx context.Context, id int64) (*domain.NeedQuestion, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, q := range r.db.questions {
		if q.ID == id {
			return &q, nil
		}
	}
	return nil, nil
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
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.NeedQuestion, len(r.db.questions))
	copy(out, r.db.questions)
	return out, nil
}

// ListByStage returns the questions of stage.
func (r *NeedQuestionRepo) ListByStage(ctx context.Context, stage int) ([]domain.NeedQuestion, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []domain.NeedQuestion{}
	for _, q := range r.db.questions {
		if q.Stage == stage {
			out = append(out, q)
		}
	}
	return out, nil
}

// Update overwrites the editable fields of q.
func (r *NeedQuestionRepo) Update(ctx context.Context, q domain.NeedQuestion) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.questions {
		if r.db.questions[i].ID == q.ID {
			cur := &r.db.questions[i]
			cur.Stage = q.Stage
			cur.SubStage = q.SubStage
			cur.Content = q.Content
			cur.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return nil
}

// Delete removes question id and clears it from need measurements.
func (r *NeedQuestionRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, q := range r.db.questions {
		if q.ID == id {
			r.db.questions = append(r.db.questions[:i], r.db.questions[i+1:]...)
			break
		}
	}
	r.db.clearItem(domain.NeedKind.Entry, id)
	return nil
}

// TargetNameRepo stores target names.
type TargetNameRepo struct {
	db *DB
}

// Create inserts n and returns its id.
func (r *TargetNameRepo) Create(ctx context.Context, n domain.TargetName) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now().UTC()
	n.ID = r.db.next("target_names")
	n.CreatedAt = now
	n.UpdatedAt = now
	r.db.names = append(r.db.names, n)
	return n.ID, nil
}

// Get returns target name id or nil.
func (r *TargetNameRepo) Get(ctx context.Context, id int64) (*domain.TargetName, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, n := range r.db.names {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, nil
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
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []domain.TargetName{}
	for _, n := range r.db.names {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

// Update overwrites the editable fields of n.
func (r *TargetNameRepo) Update(ctx context.Context, n domain.TargetName) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.names {
		if r.db.names[i].ID == n.ID {
			cur := &r.db.names[i]
			cur.Content = n.Content
			cur.Positive = n.Positive
			cur.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return nil
}

// Delete removes target name id and clears it from target measurements.
func (r *TargetNameRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, n := range r.db.names {
		if n.ID == id {
			r.db.names = append(r.db.names[:i], r.db.names[i+1:]...)
			break
		}
	}
	r.db.clearItem(domain.TargetKind.Entry, id)
	return nil
}
