package catalog

import (
	"context"
	"fmt"
)

// GrantPermission marks item accessible. With adminOnly every superuser is
// granted; otherwise a nil user means every user and a non-nil user means only
// that user. The batch is applied all-or-nothing.
func (s *Service) GrantPermission(ctx context.Context, item *Item, user *User, adminOnly bool) error {
	userIDs, err := s.grantTargets(ctx, user, adminOnly)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}
	if err := s.database.SetAccessibility(ctx, item.ID, userIDs, true); err != nil {
		return fmt.Errorf("granting item %d: %w", item.ID, err)
	}
	return nil
}

// RevokePermission marks item inaccessible for user.
func (s *Service) RevokePermission(ctx context.Context, item *Item, user *User) error {
	if user == nil {
		return fmt.Errorf("revoking item %d: %w: user", item.ID, ErrNotFound)
	}
	if err := s.database.SetAccessibility(ctx, item.ID, []int64{user.ID}, false); err != nil {
		return fmt.Errorf("revoking item %d: %w", item.ID, err)
	}
	return nil
}

// GrantPermissionRecursive grants item and every item below it, children
// before parents.
func (s *Service) GrantPermissionRecursive(ctx context.Context, item *Item, user *User, adminOnly bool) error {
	userIDs, err := s.grantTargets(ctx, user, adminOnly)
	if err != nil {
		return err
	}
	return s.walkPostOrder(ctx, item, func(it *Item) error {
		if len(userIDs) == 0 {
			return nil
		}
		if err := s.database.SetAccessibility(ctx, it.ID, userIDs, true); err != nil {
			return fmt.Errorf("granting item %d: %w", it.ID, err)
		}
		return nil
	})
}

// RevokePermissionRecursive revokes item and every item below it for user,
// children before parents.
func (s *Service) RevokePermissionRecursive(ctx context.Context, item *Item, user *User) error {
	return s.walkPostOrder(ctx, item, func(it *Item) error {
		return s.RevokePermission(ctx, it, user)
	})
}

func (s *Service) grantTargets(ctx context.Context, user *User, adminOnly bool) ([]int64, error) {
	var users []*User
	var err error
	switch {
	case adminOnly:
		users, err = s.database.ListSuperusers(ctx)
	case user == nil:
		users, err = s.database.ListUsers(ctx)
	default:
		return []int64{user.ID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// FilterItems keeps the items user may access, preserving order. Items with
// no accessibility row are dropped.
func (s *Service) FilterItems(ctx context.Context, items []*Item, user *User) ([]*Item, error) {
	if user == nil || len(items) == 0 {
		return []*Item{}, nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	allowed, err := s.database.FindAccessibleItemIDs(ctx, user.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("checking accessibility: %w", err)
	}

	filtered := make([]*Item, 0, len(allowed))
	for _, item := range items {
		if allowed[item.ID] {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// CanAccess reports whether user may access item.
func (s *Service) CanAccess(ctx context.Context, item *Item, user *User) (bool, error) {
	if user == nil {
		return false, nil
	}
	acc, err := s.database.FindAccessibility(ctx, user.ID, item.ID)
	if err != nil {
		return false, fmt.Errorf("finding accessibility: %w", err)
	}
	return acc != nil && acc.Accessible, nil
}
