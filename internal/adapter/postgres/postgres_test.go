package postgres

import (
	"context"
	"os"
	"testing"

	"needsstep/internal/adapter/storetest"
	"needsstep/internal/domain"
)

// The suite needs a disposable database; every table is emptied between
// subtests.
func TestStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	storetest.Run(t, func(t *testing.T) domain.Store {
		db, err := Open(dsn)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := db.Truncate(context.Background()); err != nil {
			t.Fatalf("Truncate: %v", err)
		}
		return db
	})
}
