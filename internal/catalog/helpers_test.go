package catalog_test

import (
	"context"
	"testing"

	"mediavault/internal/catalog"
	"mediavault/internal/database"
	"mediavault/internal/testutil"
)

type testEnv struct {
	svc   *catalog.Service
	db    *database.SQLiteDatabase
	fsmgr *testutil.MockFilesystemManager
	log   *testutil.RecordingLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	fsmgr := testutil.NewMockFilesystemManager()
	log := &testutil.RecordingLogger{}
	svc := catalog.NewService(db, fsmgr, testutil.NewStubClassifier(), log, testutil.FixedClock(), testutil.NewStubIDGenerator())
	return &testEnv{svc: svc, db: db, fsmgr: fsmgr, log: log}
}

func (e *testEnv) user(t *testing.T, name string, superuser bool) *catalog.User {
	t.Helper()
	u, err := e.svc.CreateUser(context.Background(), name, name+"-password", superuser)
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", name, err)
	}
	return u
}

func (e *testEnv) ingest(t *testing.T, location string, user *catalog.User, policy catalog.Policy) int {
	t.Helper()
	n, err := e.svc.AddItemRecursive(context.Background(), location, user, policy, nil)
	if err != nil {
		t.Fatalf("AddItemRecursive(%s) error = %v", location, err)
	}
	return n
}

func (e *testEnv) item(t *testing.T, path string) *catalog.Item {
	t.Helper()
	item, err := e.db.FindItemByPath(context.Background(), path)
	if err != nil {
		t.Fatalf("FindItemByPath(%s) error = %v", path, err)
	}
	if item == nil {
		t.Fatalf("item %s not cataloged", path)
	}
	return item
}

func paths(items []*catalog.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Path)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// cyclicDatabase reports extra children for chosen parents, producing edges
// the real store refuses to hold.
type cyclicDatabase struct {
	catalog.Database
	extra map[int64][]*catalog.Item
}

func (d *cyclicDatabase) FindChildren(ctx context.Context, parentID int64) ([]*catalog.Item, error) {
	children, err := d.Database.FindChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return append(children, d.extra[parentID]...), nil
}
