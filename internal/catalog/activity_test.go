package catalog_test

import (
	"context"
	"errors"
	"testing"

	"mediavault/internal/catalog"
)

func TestService_Activity(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, *catalog.User, *catalog.User) {
		t.Helper()
		e := newTestEnv(t)
		alice := e.user(t, "alice", false)
		bob := e.user(t, "bob", false)
		e.fsmgr.AddFile("/media/a.mp4", 1)
		e.fsmgr.AddFile("/media/private.mp4", 1)
		e.ingest(t, "/media", nil, catalog.PolicyAll)
		if err := e.svc.RevokePermission(ctx, e.item(t, "/media/private.mp4"), alice); err != nil {
			t.Fatal(err)
		}
		return e, alice, bob
	}

	t.Run("record view", func(t *testing.T) {
		e, alice, bob := setup(t)
		item := e.item(t, "/media/a.mp4")

		for _, u := range []*catalog.User{alice, alice, bob} {
			if err := e.svc.RecordView(ctx, item, u); err != nil {
				t.Fatalf("RecordView() error = %v", err)
			}
		}
		if item.Views != 3 {
			t.Errorf("in-memory Views = %d, want 3", item.Views)
		}
		if stored := e.item(t, "/media/a.mp4"); stored.Views != 3 {
			t.Errorf("stored Views = %d, want 3", stored.Views)
		}
	})

	t.Run("rate item", func(t *testing.T) {
		e, alice, _ := setup(t)
		item := e.item(t, "/media/a.mp4")

		r, err := e.svc.RateItem(ctx, item, alice, 10)
		if err != nil {
			t.Fatalf("RateItem() error = %v", err)
		}
		if r.ID == 0 {
			t.Error("rating id not set")
		}

		for _, bad := range []int{-1, 11} {
			if _, err := e.svc.RateItem(ctx, item, alice, bad); !errors.Is(err, catalog.ErrInvalidRating) {
				t.Errorf("RateItem(%d) error = %v, want ErrInvalidRating", bad, err)
			}
		}
		if _, err := e.svc.RateItem(ctx, e.item(t, "/media"), alice, 5); !errors.Is(err, catalog.ErrInvalidRating) {
			t.Errorf("RateItem(directory) error = %v, want ErrInvalidRating", err)
		}
	})

	t.Run("suggest item", func(t *testing.T) {
		e, alice, bob := setup(t)

		if _, err := e.svc.SuggestItem(ctx, alice, bob, e.item(t, "/media/a.mp4")); err != nil {
			t.Fatalf("SuggestItem() error = %v", err)
		}
		if _, err := e.svc.SuggestItem(ctx, alice, bob, e.item(t, "/media/private.mp4")); !errors.Is(err, catalog.ErrNotFound) {
			t.Errorf("SuggestItem(inaccessible) error = %v, want ErrNotFound", err)
		}

		inbox, err := e.svc.GetSuggestionInbox(ctx, bob)
		if err != nil {
			t.Fatalf("GetSuggestionInbox() error = %v", err)
		}
		if len(inbox) != 1 || inbox[0].FromUserID != alice.ID {
			t.Errorf("inbox = %+v, want one suggestion from alice", inbox)
		}
		if empty, _ := e.svc.GetSuggestionInbox(ctx, alice); len(empty) != 0 {
			t.Errorf("alice inbox has %d entries, want 0", len(empty))
		}
	})

	t.Run("update metadata", func(t *testing.T) {
		e, _, _ := setup(t)
		title := "A Film"
		year := int64(1999)

		updated, err := e.svc.UpdateMetadata(ctx, e.item(t, "/media/a.mp4"), &catalog.ItemMetadata{
			Title:   &title,
			Year:    &year,
			Artists: []string{"Director One", "Composer Two"},
		})
		if err != nil {
			t.Fatalf("UpdateMetadata() error = %v", err)
		}
		if updated.Title == nil || *updated.Title != title {
			t.Errorf("Title = %v, want %q", updated.Title, title)
		}
		if updated.Year == nil || *updated.Year != year {
			t.Errorf("Year = %v, want %d", updated.Year, year)
		}
		if !equalStrings(updated.Artists, []string{"Director One", "Composer Two"}) {
			t.Errorf("Artists = %v", updated.Artists)
		}
	})
}

func TestService_GetItemAndHistory(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	if _, err := e.svc.GetItem(ctx, 42); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("GetItem(missing) error = %v, want ErrNotFound", err)
	}

	for _, name := range []string{"add", "grant", "rm"} {
		op, err := e.db.CreateOperation(ctx, name, "{}")
		if err != nil {
			t.Fatal(err)
		}
		if err := e.db.FinishOperation(ctx, op.ID, "ok"); err != nil {
			t.Fatal(err)
		}
	}

	ops, err := e.svc.GetHistory(ctx, 2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 2 || ops[0].Operation != "rm" {
		t.Errorf("GetHistory(2) = %d ops, want newest first", len(ops))
	}
	if all, _ := e.svc.GetHistory(ctx, 0); len(all) != 3 {
		t.Errorf("GetHistory(0) = %d ops, want 3", len(all))
	}
}
