package app_test

import (
	"context"
	"strings"
	"testing"

	"needsstep/internal/adapter/memory"
	"needsstep/internal/app"
	"needsstep/internal/domain"
)

func newNeedService(db *memory.DB) *app.NeedService {
	return app.NewNeedService(db.Entries(domain.NeedKind), db.Measurements(domain.NeedKind), db.NeedQuestions(), nil)
}

func TestNeedService_CreateQuestion_Validation(t *testing.T) {
	svc := newNeedService(memory.New())
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}

	for _, content := range []string{"", "four", strings.Repeat("x", 141)} {
		_, err := svc.CreateQuestion(context.Background(), admin, 1, 1, content)
		wantMessage(t, err, app.ErrInvalid, "Content must be between 5 and 140 characters")
	}

	id, err := svc.CreateQuestion(context.Background(), admin, 1, 1, "Did you sleep at least seven hours?")
	if err != nil || id == 0 {
		t.Fatalf("CreateQuestion = %d, %v", id, err)
	}
}

func TestNeedService_Questions(t *testing.T) {
	svc := newNeedService(memory.New())
	ctx := context.Background()
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}

	a, _ := svc.CreateQuestion(ctx, admin, 1, 1, "Did you drink water?")
	_, _ = svc.CreateQuestion(ctx, admin, 2, 1, "Did you talk to a friend?")

	all, err := svc.AllQuestions(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("AllQuestions = %v, %v", all, err)
	}
	stage, err := svc.QuestionsByStage(ctx, 1)
	if err != nil || len(stage) != 1 || stage[0].ID != a {
		t.Fatalf("QuestionsByStage = %v, %v", stage, err)
	}
	empty, err := svc.QuestionsByStage(ctx, 7)
	if err != nil || len(empty) != 0 {
		t.Errorf("QuestionsByStage(7) = %v, %v; want empty, nil", empty, err)
	}
}

func TestNeedService_EditQuestion(t *testing.T) {
	db := memory.New()
	svc := newNeedService(db)
	ctx := context.Background()
	id, _ := svc.CreateQuestion(ctx, &domain.User{ID: 1}, 1, 2, "Did you stretch today?")

	stage := 4
	if err := svc.EditQuestion(ctx, id, domain.NeedQuestionPatch{Stage: &stage}); err != nil {
		t.Fatalf("EditQuestion: %v", err)
	}
	q, _ := db.NeedQuestions().Get(ctx, id)
	if q.Stage != 4 || q.SubStage != 2 || q.Content != "Did you stretch today?" {
		t.Errorf("partial update changed other fields: %+v", q)
	}

	short := "hi"
	err := svc.EditQuestion(ctx, id, domain.NeedQuestionPatch{Content: &short})
	wantMessage(t, err, app.ErrInvalid, "Content must be between 5 and 140 characters")

	err = svc.EditQuestion(ctx, 999, domain.NeedQuestionPatch{Stage: &stage})
	wantMessage(t, err, app.ErrNotFound, "Need question not found")
}

func TestNeedService_DeleteQuestionKeepsMeasurements(t *testing.T) {
	db := memory.New()
	svc := newNeedService(db)
	ctx := context.Background()
	qid, _ := svc.CreateQuestion(ctx, &domain.User{ID: 1}, 1, 1, "Did you go outside?")
	mid, err := svc.Record(ctx, 2, "2024-01-01", qid, 5)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := svc.DeleteQuestion(ctx, qid); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	m, err := svc.Measurement(ctx, 2, mid)
	if err != nil {
		t.Fatalf("Measurement: %v", err)
	}
	if m.ItemID != nil {
		t.Errorf("expected cleared question, got %d", *m.ItemID)
	}
	if item, _ := svc.Item(ctx, m); item != nil {
		t.Errorf("Item = %v, want nil", item)
	}

	wantMessage(t, svc.DeleteQuestion(ctx, qid), app.ErrNotFound, "Need question not found")
}

func TestNeedService_DailyFlow(t *testing.T) {
	svc := newNeedService(memory.New())
	ctx := context.Background()
	qid, _ := svc.CreateQuestion(ctx, &domain.User{ID: 1}, 1, 1, "Did you eat breakfast?")

	first, _ := svc.FindByDate(ctx, 2, "2024-02-02")
	again, _ := svc.FindByDate(ctx, 2, "2024-02-02")
	if first.ID != again.ID {
		t.Fatalf("FindByDate created two needs: %d, %d", first.ID, again.ID)
	}

	if _, err := svc.Record(ctx, 2, "2024-02-02", qid, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Record(ctx, 2, "2024-02-03", qid, 4); err != nil {
		t.Fatal(err)
	}

	mine, err := svc.Mine(ctx, 2)
	if err != nil || len(mine) != 2 {
		t.Fatalf("Mine = %v, %v", mine, err)
	}
	day, err := svc.MeasurementsByDate(ctx, 2, "2024-02-02")
	if err != nil || len(day) != 1 || day[0].Value != 3 {
		t.Fatalf("MeasurementsByDate = %v, %v", day, err)
	}

	_, err = svc.MeasurementsByDate(ctx, 3, "2024-02-02")
	wantMessage(t, err, app.ErrNotFound, "Need not found")

	if err := svc.DeleteByDate(ctx, 2, "2024-02-02"); err != nil {
		t.Fatalf("DeleteByDate: %v", err)
	}
	if _, err := svc.Measurement(ctx, 2, day[0].ID); err == nil {
		t.Error("measurement survived its need")
	}
	wantMessage(t, svc.DeleteByDate(ctx, 2, "2024-02-02"), app.ErrNotFound, "Need not found")
}
