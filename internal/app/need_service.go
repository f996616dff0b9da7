package app

import (
	"context"

	"needsstep/internal/domain"

	"github.com/charmbracelet/log"
)

// NeedService encapsulates need-tracking use cases. Daily needs and measure
// needs come from the embedded Tracker; need questions are a global catalog
// managed by admins.
type NeedService struct {
	*Tracker
	questions domain.NeedQuestionRepository
}

// NewNeedService creates a NeedService backed by the given repositories.
func NewNeedService(entries domain.EntryRepository, measures domain.MeasurementRepository, questions domain.NeedQuestionRepository, logger *log.Logger) *NeedService {
	return &NeedService{
		Tracker:   NewTracker(domain.NeedKind, entries, measures, questions, logger),
		questions: questions,
	}
}

// CreateQuestion validates and stores a new need question created by admin.
func (s *NeedService) CreateQuestion(ctx context.Context, admin *domain.User, stage, subStage int, content string) (int64, error) {
	q := domain.NeedQuestion{Stage: stage, SubStage: subStage, Content: content}
	if admin != nil {
		q.CreatedBy = &admin.ID
	}
	if err := q.Validate(); err != nil {
		return 0, invalid(capitalize(err.Error()))
	}
	id, err := s.questions.Create(ctx, q)
	if err != nil {
		return 0, s.fail("Could not create need question", err)
	}
	return id, nil
}

// AllQuestions lists every need question.
func (s *NeedService) AllQuestions(ctx context.Context) ([]domain.NeedQuestion, error) {
	items, err := s.questions.List(ctx)
	if err != nil {
		return nil, s.fail("Could not find any need questions", err)
	}
	return items, nil
}

// QuestionsByStage lists the need questions of one stage. An empty result is
// not an error.
func (s *NeedService) QuestionsByStage(ctx context.Context, stage int) ([]domain.NeedQuestion, error) {
	items, err := s.questions.ListByStage(ctx, stage)
	if err != nil {
		return nil, s.fail("Could not find any need questions", err)
	}
	return items, nil
}

// EditQuestion merges patch onto need question id.
func (s *NeedService) EditQuestion(ctx context.Context, id int64, patch domain.NeedQuestionPatch) error {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return s.fail("Could not edit need question", err)
	}
	if q == nil {
		return notFound("need question")
	}
	patch.Apply(q)
	if err := q.Validate(); err != nil {
		return invalid(capitalize(err.Error()))
	}
	if err := s.questions.Update(ctx, *q); err != nil {
		return s.fail("Could not edit need question", err)
	}
	return nil
}

// DeleteQuestion removes need question id. Measurements that referenced it
// are kept with an empty question.
func (s *NeedService) DeleteQuestion(ctx context.Context, id int64) error {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return s.fail("Could not delete need question", err)
	}
	if q == nil {
		return notFound("need question")
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return s.fail("Could not delete need question", err)
	}
	return nil
}
