package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// GetRootItems returns the top-level items user may access.
func (s *Service) GetRootItems(ctx context.Context, user *User) ([]*Item, error) {
	roots, err := s.database.FindRootItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding root items: %w", err)
	}
	return s.FilterItems(ctx, roots, user)
}

// GetChildren returns the direct children of the item identified by parentID.
// An empty, non-numeric or unknown id falls back to the user's root items.
//
// Children are not filtered by accessibility; pass them through FilterItems
// before showing them to user.
func (s *Service) GetChildren(ctx context.Context, parentID string, user *User) ([]*Item, error) {
	parent, err := s.resolveParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return s.GetRootItems(ctx, user)
	}

	children, err := s.database.FindChildren(ctx, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("finding children: %w", err)
	}
	return children, nil
}

// GetChildrenRecursive returns the subtree rooted at parentID as a single
// node, with every level filtered for user. When parentID does not resolve
// it returns the user's whole root forest instead.
func (s *Service) GetChildrenRecursive(ctx context.Context, parentID string, user *User) ([]*TreeNode, error) {
	parent, err := s.resolveParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return s.GetRootItemsRecursive(ctx, user)
	}

	node, err := s.buildTree(ctx, parent, user, make(map[int64]bool))
	if err != nil {
		return nil, err
	}
	return []*TreeNode{node}, nil
}

// GetRootItemsRecursive returns every root item user may access with its
// accessible descendants materialized.
func (s *Service) GetRootItemsRecursive(ctx context.Context, user *User) ([]*TreeNode, error) {
	roots, err := s.GetRootItems(ctx, user)
	if err != nil {
		return nil, err
	}

	nodes := make([]*TreeNode, 0, len(roots))
	for _, root := range roots {
		node, err := s.buildTree(ctx, root, user, make(map[int64]bool))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (s *Service) buildTree(ctx context.Context, item *Item, user *User, ancestors map[int64]bool) (*TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ancestors[item.ID] {
		return nil, fmt.Errorf("%w: item %d (%s)", ErrCycleDetected, item.ID, item.Path)
	}
	ancestors[item.ID] = true
	defer delete(ancestors, item.ID)

	children, err := s.database.FindChildren(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("finding children of %s: %w", item.Path, err)
	}
	visible, err := s.FilterItems(ctx, children, user)
	if err != nil {
		return nil, err
	}

	node := &TreeNode{Item: item, Children: make([]*TreeNode, 0, len(visible))}
	for _, child := range visible {
		childNode, err := s.buildTree(ctx, child, user, ancestors)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

// resolveParent turns a raw id into an item. Unusable ids resolve to nil.
func (s *Service) resolveParent(ctx context.Context, parentID string) (*Item, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(parentID), 10, 64)
	if err != nil {
		return nil, nil
	}
	item, err := s.database.FindItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding parent item: %w", err)
	}
	return item, nil
}
