// Package storetest is a conformance suite run against every domain.Store
// implementation.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"needsstep/internal/domain"
)

// Run exercises open. Each subtest gets a fresh, empty store.
func Run(t *testing.T, open func(t *testing.T) domain.Store) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(t *testing.T, s domain.Store)
	}{
		{"Users", testUsers},
		{"Sessions", testSessions},
		{"FindOrCreateIsIdempotent", testFindOrCreate},
		{"FindOrCreateConcurrent", testFindOrCreateConcurrent},
		{"EntryDeleteCascades", testEntryDeleteCascades},
		{"MeasurementUpdate", testMeasurementUpdate},
		{"NeedQuestions", testNeedQuestions},
		{"TargetNames", testTargetNames},
		{"CatalogDeleteClearsItem", testCatalogDeleteClearsItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func mustUser(t *testing.T, s domain.Store, name string) *domain.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), name, "hash", domain.RoleFree)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func testUsers(t *testing.T, s domain.Store) {
	ctx := context.Background()
	users := s.Users()

	n, err := users.Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("Count = %d, %v; want 0", n, err)
	}

	u, err := users.Create(ctx, "alice", "hash", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 || u.Role != domain.RoleAdmin {
		t.Errorf("unexpected user %+v", u)
	}

	got, err := users.GetByUsername(ctx, "alice")
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("GetByUsername = %+v, %v", got, err)
	}
	got, err = users.GetByID(ctx, u.ID)
	if err != nil || got == nil || got.Username != "alice" || !got.IsAdmin() {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}

	missing, err := users.GetByUsername(ctx, "bob")
	if err != nil || missing != nil {
		t.Errorf("GetByUsername(bob) = %+v, %v; want nil, nil", missing, err)
	}

	if _, err := users.Create(ctx, "alice", "other", domain.RoleFree); err == nil {
		t.Error("expected duplicate username to fail")
	}

	n, _ = users.Count(ctx)
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func testSessions(t *testing.T, s domain.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	sessions := s.Sessions()

	if err := sessions.Create(ctx, u.ID, "live", "agent", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := sessions.Create(ctx, u.ID, "stale", "", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := sessions.GetByToken(ctx, "live")
	if err != nil || got == nil {
		t.Fatalf("GetByToken = %+v, %v", got, err)
	}
	if got.UserID != u.ID || got.UserAgent != "agent" {
		t.Errorf("unexpected session %+v", got)
	}

	n, err := sessions.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteExpired removed %d, want 1", n)
	}
	if got, _ := sessions.GetByToken(ctx, "stale"); got != nil {
		t.Error("expected expired session to be gone")
	}

	if err := sessions.Delete(ctx, "live"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := sessions.GetByToken(ctx, "live"); got != nil {
		t.Error("expected session to be deleted")
	}
}

func testFindOrCreate(t *testing.T, s domain.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")

	for _, k := range []domain.Kind{domain.NeedKind, domain.TargetKind} {
		entries := s.Entries(k)
		first, err := entries.FindOrCreate(ctx, alice.ID, "2024-01-01")
		if err != nil {
			t.Fatalf("%s FindOrCreate: %v", k.Entry, err)
		}
		again, err := entries.FindOrCreate(ctx, alice.ID, "2024-01-01")
		if err != nil {
			t.Fatalf("%s FindOrCreate: %v", k.Entry, err)
		}
		if first.ID != again.ID {
			t.Errorf("%s: got ids %d and %d for the same day", k.Entry, first.ID, again.ID)
		}
		other, _ := entries.FindOrCreate(ctx, bob.ID, "2024-01-01")
		if other.ID == first.ID {
			t.Errorf("%s: users share an entry", k.Entry)
		}
		if _, err := entries.FindOrCreate(ctx, alice.ID, "2024-01-02"); err != nil {
			t.Fatal(err)
		}

		mine, err := entries.ListByUser(ctx, alice.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(mine) != 2 {
			t.Errorf("%s: ListByUser returned %d entries, want 2", k.Entry, len(mine))
		}

		byDate, _ := entries.GetByDate(ctx, alice.ID, "2024-01-01")
		if byDate == nil || byDate.ID != first.ID {
			t.Errorf("%s: GetByDate = %+v", k.Entry, byDate)
		}
		if none, _ := entries.GetByDate(ctx, alice.ID, "1999-01-01"); none != nil {
			t.Errorf("%s: GetByDate created an entry", k.Entry)
		}
	}
}

func testFindOrCreateConcurrent(t *testing.T, s domain.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	entries := s.Entries(domain.NeedKind)

	const workers = 8
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := entries.FindOrCreate(ctx, u.ID, "2024-03-03")
			errs[i] = err
			if e != nil {
				ids[i] = e.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("worker %d got entry %d, worker 0 got %d", i, ids[i], ids[0])
		}
	}
	all, _ := entries.ListByUser(ctx, u.ID)
	if len(all) != 1 {
		t.Errorf("expected one entry, got %d", len(all))
	}
}

func testEntryDeleteCascades(t *testing.T, s domain.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	qid, err := s.NeedQuestions().Create(ctx, domain.NeedQuestion{Stage: 1, SubStage: 1, Content: "Do you sleep well?"})
	if err != nil {
		t.Fatal(err)
	}

	e, _ := s.Entries(domain.NeedKind).FindOrCreate(ctx, u.ID, "2024-01-01")
	mid, err := s.Measurements(domain.NeedKind).Create(ctx, domain.Measurement{EntryID: e.ID, ItemID: &qid, UserID: u.ID, Value: 4})
	if err != nil {
		t.Fatalf("Create measurement: %v", err)
	}

	if err := s.Entries(domain.NeedKind).Delete(ctx, e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.Entries(domain.NeedKind).GetByID(ctx, e.ID); got != nil {
		t.Error("entry still present")
	}
	if got, _ := s.Measurements(domain.NeedKind).GetByID(ctx, mid); got != nil {
		t.Error("measurement survived entry delete")
	}
	if q, _ := s.NeedQuestions().Get(ctx, qid); q == nil {
		t.Error("question removed with entry")
	}
}

func testMeasurementUpdate(t *testing.T, s domain.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")
	nid, _ := s.TargetNames().Create(ctx, domain.TargetName{UserID: u.ID, Content: "Read", Positive: true})
	e, _ := s.Entries(domain.TargetKind).FindOrCreate(ctx, u.ID, "2024-01-01")
	measures := s.Measurements(domain.TargetKind)

	mid, err := measures.Create(ctx, domain.Measurement{EntryID: e.ID, ItemID: &nid, UserID: u.ID, Value: 30})
	if err != nil {
		t.Fatal(err)
	}
	if err := measures.UpdateValue(ctx, mid, 45.5); err != nil {
		t.Fatalf("UpdateValue: %v", err)
	}
	m, err := measures.GetByID(ctx, mid)
	if err != nil || m == nil {
		t.Fatalf("GetByID = %+v, %v", m, err)
	}
	if m.Value != 45.5 || m.EntryID != e.ID || m.UserID != u.ID {
		t.Errorf("unexpected measurement %+v", m)
	}
	if m.ItemID == nil || *m.ItemID != nid {
		t.Errorf("ItemID = %v, want %d", m.ItemID, nid)
	}

	list, _ := measures.ListByEntry(ctx, e.ID)
	if len(list) != 1 {
		t.Errorf("ListByEntry returned %d, want 1", len(list))
	}

	// Need measurements live in a separate table.
	if other, _ := s.Measurements(domain.NeedKind).GetByID(ctx, mid); other != nil && other.EntryID == e.ID {
		t.Error("target measurement visible as a need measurement")
	}

	if err := measures.Delete(ctx, mid); err != nil {
		t.Fatal(err)
	}
	if m, _ := measures.GetByID(ctx, mid); m != nil {
		t.Error("measurement still present")
	}
}

func testNeedQuestions(t *testing.T, s domain.Store) {
	ctx := context.Background()
	admin := mustUser(t, s, "admin")
	repo := s.NeedQuestions()

	id1, err := repo.Create(ctx, domain.NeedQuestion{Stage: 1, SubStage: 2, Content: "Did you eat well?", CreatedBy: &admin.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.NeedQuestion{Stage: 2, SubStage: 1, Content: "Did you feel safe?"}); err != nil {
		t.Fatal(err)
	}

	all, _ := repo.List(ctx)
	if len(all) != 2 {
		t.Fatalf("List returned %d, want 2", len(all))
	}
	stage1, _ := repo.ListByStage(ctx, 1)
	if len(stage1) != 1 || stage1[0].ID != id1 {
		t.Errorf("ListByStage(1) = %+v", stage1)
	}
	if none, _ := repo.ListByStage(ctx, 9); len(none) != 0 {
		t.Errorf("ListByStage(9) = %+v", none)
	}

	q, _ := repo.Get(ctx, id1)
	if q == nil || q.CreatedBy == nil || *q.CreatedBy != admin.ID {
		t.Fatalf("Get = %+v", q)
	}
	q.Content = "Did you eat enough?"
	q.Stage = 3
	if err := repo.Update(ctx, *q); err != nil {
		t.Fatalf("Update: %v", err)
	}
	q, _ = repo.Get(ctx, id1)
	if q.Content != "Did you eat enough?" || q.Stage != 3 || q.SubStage != 2 {
		t.Errorf("after Update = %+v", q)
	}

	item, err := repo.GetItem(ctx, id1)
	if err != nil || item == nil || item.ItemID() != id1 || item.OwnerID() != 0 {
		t.Errorf("GetItem = %v, %v", item, err)
	}
	if item, err := repo.GetItem(ctx, 999); err != nil || item != nil {
		t.Errorf("GetItem(999) = %v, %v; want nil, nil", item, err)
	}
}

func testTargetNames(t *testing.T, s domain.Store) {
	ctx := context.Background()
	alice := mustUser(t, s, "alice")
	bob := mustUser(t, s, "bob")
	repo := s.TargetNames()

	id, err := repo.Create(ctx, domain.TargetName{UserID: alice.ID, Content: "Meditate", Positive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.TargetName{UserID: bob.ID, Content: "Smoke", Positive: false}); err != nil {
		t.Fatal(err)
	}

	mine, _ := repo.ListByUser(ctx, alice.ID)
	if len(mine) != 1 || mine[0].Content != "Meditate" || !mine[0].Positive {
		t.Errorf("ListByUser = %+v", mine)
	}

	n, _ := repo.Get(ctx, id)
	n.Positive = false
	if err := repo.Update(ctx, *n); err != nil {
		t.Fatal(err)
	}
	n, _ = repo.Get(ctx, id)
	if n.Positive || n.Content != "Meditate" {
		t.Errorf("after Update = %+v", n)
	}

	item, _ := repo.GetItem(ctx, id)
	if item == nil || item.OwnerID() != alice.ID {
		t.Errorf("GetItem = %v", item)
	}
}

func testCatalogDeleteClearsItem(t *testing.T, s domain.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "alice")

	qid, _ := s.NeedQuestions().Create(ctx, domain.NeedQuestion{Stage: 1, SubStage: 1, Content: "Are you rested?"})
	ne, _ := s.Entries(domain.NeedKind).FindOrCreate(ctx, u.ID, "2024-01-01")
	nm, _ := s.Measurements(domain.NeedKind).Create(ctx, domain.Measurement{EntryID: ne.ID, ItemID: &qid, UserID: u.ID, Value: 2})

	nid, _ := s.TargetNames().Create(ctx, domain.TargetName{UserID: u.ID, Content: "Walk", Positive: true})
	te, _ := s.Entries(domain.TargetKind).FindOrCreate(ctx, u.ID, "2024-01-01")
	tm, _ := s.Measurements(domain.TargetKind).Create(ctx, domain.Measurement{EntryID: te.ID, ItemID: &nid, UserID: u.ID, Value: 20})

	if err := s.NeedQuestions().Delete(ctx, qid); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if err := s.TargetNames().Delete(ctx, nid); err != nil {
		t.Fatalf("delete target name: %v", err)
	}

	m, _ := s.Measurements(domain.NeedKind).GetByID(ctx, nm)
	if m == nil {
		t.Fatal("need measurement removed with its question")
	}
	if m.ItemID != nil {
		t.Errorf("need measurement item = %d, want nil", *m.ItemID)
	}
	m, _ = s.Measurements(domain.TargetKind).GetByID(ctx, tm)
	if m == nil {
		t.Fatal("target measurement removed with its name")
	}
	if m.ItemID != nil {
		t.Errorf("target measurement item = %d, want nil", *m.ItemID)
	}
}
