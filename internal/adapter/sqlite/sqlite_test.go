package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"needsstep/internal/adapter/storetest"
	"needsstep/internal/domain"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		db, err := Open(":memory:")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return db
	})
}

func TestOpenFileIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "needsstep.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := db.Users().Create(ctx, "alice", "hash", domain.RoleFree); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	u, err := db.Users().GetByUsername(ctx, "alice")
	if err != nil || u == nil {
		t.Fatalf("GetByUsername after reopen = %+v, %v", u, err)
	}
	if db.Dialect() != "sqlite" {
		t.Errorf("Dialect = %q", db.Dialect())
	}
}

func TestQuestionContentCheck(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.NeedQuestions().Create(context.Background(), domain.NeedQuestion{Stage: 1, SubStage: 1, Content: "hey"})
	if err == nil {
		t.Error("expected short content to violate the column check")
	}
}
