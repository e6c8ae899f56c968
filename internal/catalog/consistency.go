package catalog

import (
	"context"
	"fmt"
)

// Problem is one inconsistency found by CheckConsistency.
type Problem struct {
	Item   *Item
	Reason string
}

const (
	ProblemRootFlag    = "root flag does not match parent edges"
	ProblemMissingFile = "file no longer exists"
)

// CheckConsistency compares the catalog with the tree edges and the
// filesystem. It reports problems and changes nothing.
func (s *Service) CheckConsistency(ctx context.Context) ([]Problem, error) {
	var problems []Problem

	mismatched, err := s.database.FindRootFlagMismatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking root flags: %w", err)
	}
	for _, item := range mismatched {
		problems = append(problems, Problem{Item: item, Reason: ProblemRootFlag})
	}

	items, err := s.database.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return problems, err
		}
		if !s.fsmgr.Exists(item.Path) {
			problems = append(problems, Problem{Item: item, Reason: ProblemMissingFile})
		}
	}

	if len(problems) > 0 {
		s.logger.Warn("catalog inconsistencies found", "count", len(problems))
	}
	return problems, nil
}
