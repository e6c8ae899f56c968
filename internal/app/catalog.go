package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"mediavault/internal/catalog"
	"mediavault/internal/database/migrations"
)

// user resolves a user name. An empty name is an error: every catalog
// view is per user.
func (a *App) user(ctx context.Context, name string) (*catalog.User, error) {
	if name == "" {
		return nil, fmt.Errorf("no user given (use --user)")
	}
	return a.service.GetUserByName(ctx, name)
}

// optionalUser resolves name, returning nil for an empty name.
func (a *App) optionalUser(ctx context.Context, name string) (*catalog.User, error) {
	if name == "" {
		return nil, nil
	}
	return a.service.GetUserByName(ctx, name)
}

// itemByPath looks up a cataloged item by a raw filesystem path.
func (a *App) itemByPath(ctx context.Context, rawPath string) (*catalog.Item, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	item, err := a.db.FindItemByPath(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%s: %w", absPath, catalog.ErrNotFound)
	}
	return item, nil
}

func (a *App) CreateUser(ctx context.Context, username, password string, superuser bool) (*catalog.User, error) {
	if err := a.persistOperation(ctx); err != nil {
		return nil, err
	}
	u, err := a.service.CreateUser(ctx, username, password, superuser)
	return u, a.op.Fail(err)
}

func (a *App) ListUsers(ctx context.Context) ([]*catalog.User, error) {
	return a.service.ListUsers(ctx)
}

// AddItems ingests rawPath recursively. parentPath, when set, names the
// cataloged directory the new tree is attached to.
func (a *App) AddItems(ctx context.Context, rawPath, username, policy, parentPath string) (int, error) {
	p, err := catalog.ParsePolicy(policy)
	if err != nil {
		return 0, err
	}
	u, err := a.optionalUser(ctx, username)
	if err != nil {
		return 0, err
	}
	resolved, err := a.fsmgr.Resolve(rawPath)
	if err != nil {
		return 0, fmt.Errorf("resolving path: %w", err)
	}

	var parent *catalog.Item
	if parentPath != "" {
		if parent, err = a.itemByPath(ctx, parentPath); err != nil {
			return 0, err
		}
	}

	if err := a.persistOperation(ctx); err != nil {
		return 0, err
	}
	n, err := a.service.AddItemRecursive(ctx, resolved.String(), u, p, parent)
	return n, a.op.Fail(err)
}

func (a *App) RemoveItems(ctx context.Context, rawPath string) (int, error) {
	item, err := a.itemByPath(ctx, rawPath)
	if err != nil {
		return 0, err
	}
	if err := a.persistOperation(ctx); err != nil {
		return 0, err
	}
	n, err := a.service.RemoveItemRecursive(ctx, item)
	return n, a.op.Fail(err)
}

// Grant gives access to the item at rawPath. With adminOnly every superuser
// is granted; otherwise an empty username grants everyone.
func (a *App) Grant(ctx context.Context, rawPath, username string, adminOnly, recursive bool) error {
	item, err := a.itemByPath(ctx, rawPath)
	if err != nil {
		return err
	}
	u, err := a.optionalUser(ctx, username)
	if err != nil {
		return err
	}
	if err := a.persistOperation(ctx); err != nil {
		return err
	}
	if recursive {
		return a.op.Fail(a.service.GrantPermissionRecursive(ctx, item, u, adminOnly))
	}
	return a.op.Fail(a.service.GrantPermission(ctx, item, u, adminOnly))
}

func (a *App) Revoke(ctx context.Context, rawPath, username string, recursive bool) error {
	item, err := a.itemByPath(ctx, rawPath)
	if err != nil {
		return err
	}
	u, err := a.user(ctx, username)
	if err != nil {
		return err
	}
	if err := a.persistOperation(ctx); err != nil {
		return err
	}
	if recursive {
		return a.op.Fail(a.service.RevokePermissionRecursive(ctx, item, u))
	}
	return a.op.Fail(a.service.RevokePermission(ctx, item, u))
}

// List returns what username may see directly below parentPath, or the
// user's roots when parentPath is empty.
func (a *App) List(ctx context.Context, username, parentPath string) ([]*catalog.Item, error) {
	u, err := a.user(ctx, username)
	if err != nil {
		return nil, err
	}
	parentID, err := a.parentID(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	children, err := a.service.GetChildren(ctx, parentID, u)
	if err != nil {
		return nil, err
	}
	return a.service.FilterItems(ctx, children, u)
}

// Tree returns the filtered subtree below parentPath, or the whole forest.
func (a *App) Tree(ctx context.Context, username, parentPath string) ([]*catalog.TreeNode, error) {
	u, err := a.user(ctx, username)
	if err != nil {
		return nil, err
	}
	parentID, err := a.parentID(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	return a.service.GetChildrenRecursive(ctx, parentID, u)
}

func (a *App) parentID(ctx context.Context, parentPath string) (string, error) {
	if parentPath == "" {
		return "", nil
	}
	item, err := a.itemByPath(ctx, parentPath)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(item.ID, 10), nil
}

func (a *App) Suggested(ctx context.Context, username string) ([]*catalog.Item, error) {
	u, err := a.user(ctx, username)
	if err != nil {
		return nil, err
	}
	return a.service.GetSuggestedItems(ctx, u)
}

func (a *App) Latest(ctx context.Context, username string, count int) ([]*catalog.Item, error) {
	u, err := a.user(ctx, username)
	if err != nil {
		return nil, err
	}
	return a.service.GetLatestItems(ctx, u, count)
}

// accessibleItem resolves rawPath and hides items the user may not see.
func (a *App) accessibleItem(ctx context.Context, u *catalog.User, rawPath string) (*catalog.Item, error) {
	item, err := a.itemByPath(ctx, rawPath)
	if err != nil {
		return nil, err
	}
	ok, err := a.service.CanAccess(ctx, item, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", item.Path, catalog.ErrNotFound)
	}
	return item, nil
}

func (a *App) Rate(ctx context.Context, username, rawPath string, value int) (*catalog.Rating, error) {
	u, err := a.user(ctx, username)
	if err != nil {
		return nil, err
	}
	item, err := a.accessibleItem(ctx, u, rawPath)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(ctx); err != nil {
		return nil, err
	}
	r, err := a.service.RateItem(ctx, item, u, value)
	return r, a.op.Fail(err)
}

func (a *App) View(ctx context.Context, username, rawPath string) (*catalog.Item, error) {
	u, err := a.user(ctx, username)
	if err != nil {
		return nil, err
	}
	item, err := a.accessibleItem(ctx, u, rawPath)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(ctx); err != nil {
		return nil, err
	}
	return item, a.op.Fail(a.service.RecordView(ctx, item, u))
}

func (a *App) Recommend(ctx context.Context, from, to, rawPath string) (*catalog.Suggestion, error) {
	sender, err := a.user(ctx, from)
	if err != nil {
		return nil, err
	}
	recipient, err := a.service.GetUserByName(ctx, to)
	if err != nil {
		return nil, err
	}
	item, err := a.itemByPath(ctx, rawPath)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(ctx); err != nil {
		return nil, err
	}
	s, err := a.service.SuggestItem(ctx, sender, recipient, item)
	return s, a.op.Fail(err)
}

// InboxEntry is a suggestion joined with its item and sender.
type InboxEntry struct {
	Suggestion *catalog.Suggestion
	Item       *catalog.Item
	From       *catalog.User
}

// Inbox lists suggestions for username whose items are still cataloged and
// accessible to them.
func (a *App) Inbox(ctx context.Context, username string) ([]InboxEntry, error) {
	u, err := a.user(ctx, username)
	if err != nil {
		return nil, err
	}
	suggestions, err := a.service.GetSuggestionInbox(ctx, u)
	if err != nil {
		return nil, err
	}

	senders := make(map[int64]*catalog.User)
	var entries []InboxEntry
	for _, s := range suggestions {
		item, err := a.service.GetItem(ctx, s.ItemID)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ok, err := a.service.CanAccess(ctx, item, u)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		from, seen := senders[s.FromUserID]
		if !seen {
			if from, err = a.db.FindUserByID(ctx, s.FromUserID); err != nil {
				return nil, fmt.Errorf("finding sender: %w", err)
			}
			senders[s.FromUserID] = from
		}
		entries = append(entries, InboxEntry{Suggestion: s, Item: item, From: from})
	}
	return entries, nil
}

func (a *App) Search(ctx context.Context, username, query string, limit int) ([]*catalog.Item, error) {
	u, err := a.user(ctx, username)
	if err != nil {
		return nil, err
	}
	return a.service.SearchItems(ctx, u, query, limit)
}

// UpdateMetadata stores descriptive fields for the item at rawPath.
func (a *App) UpdateMetadata(ctx context.Context, rawPath string, meta *catalog.ItemMetadata) (*catalog.Item, error) {
	item, err := a.itemByPath(ctx, rawPath)
	if err != nil {
		return nil, err
	}
	if err := a.persistOperation(ctx); err != nil {
		return nil, err
	}
	updated, err := a.service.UpdateMetadata(ctx, item, meta)
	return updated, a.op.Fail(err)
}

func (a *App) History(ctx context.Context, limit int) ([]*catalog.Operation, error) {
	return a.service.GetHistory(ctx, limit)
}

func (a *App) Check(ctx context.Context) ([]catalog.Problem, error) {
	return a.service.CheckConsistency(ctx)
}

func (a *App) MigrationStatus() (migrations.Status, error) {
	return a.db.MigrationStatus()
}

func (a *App) DumpSchema(ctx context.Context) (string, error) {
	return a.db.DumpSchema(ctx)
}
