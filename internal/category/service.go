package category

import (
	"context"
	"strings"

	"shokolad-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes the category graph both as flat records and as assembled
// trees.
type Service interface {
	Create(ctx context.Context, name string, description, parentID *string) (*Category, error)
	FindAll(ctx context.Context) ([]*Category, error)
	FindByID(ctx context.Context, id string) (*Category, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Category, error)
	Remove(ctx context.Context, id string) error
	FindChildren(ctx context.Context, parentID string) ([]*Category, error)
	FindTree(ctx context.Context) ([]*TreeNode, error)
	GetPath(ctx context.Context, id string) ([]*Category, error)
	GetStats(ctx context.Context) (*Stats, error)
	ToggleActive(ctx context.Context, id string) (*Category, error)
	UpdateOrder(ctx context.Context, id string, order int) (*Category, error)
	Search(ctx context.Context, query string) ([]*Category, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, name string, description, parentID *string) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("name", name),
	)
	log.Info("Create category started")

	if strings.TrimSpace(name) == "" {
		log.Warn("Create category validation failed: empty name")
		return nil, ErrEmptyName
	}

	if parentID != nil {
		if _, err := uuid.Parse(*parentID); err != nil {
			return nil, ErrInvalidCategoryID
		}
		// Parent must resolve to an existing category.
		if _, err := s.repo.FindByID(ctx, *parentID); err != nil {
			log.Warn("Create category parent not found", zap.String("parent_id", *parentID))
			return nil, err
		}
	}

	c, err := s.repo.Insert(ctx, name, description, parentID)
	if err != nil {
		log.Error("failed to insert category", zap.Error(err))
		return nil, err
	}

	log.Info("Create category success", zap.String("category_id", c.ID))
	return c, nil
}

func (s *service) FindAll(ctx context.Context) ([]*Category, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) FindByID(ctx context.Context, id string) (*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidCategoryID
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, params UpdateParams) (*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidCategoryID
	}

	if params.Parent != nil {
		if _, err := uuid.Parse(*params.Parent); err != nil {
			return nil, ErrInvalidCategoryID
		}
		if _, err := s.repo.FindByID(ctx, *params.Parent); err != nil {
			return nil, err
		}
		// Reassigning the parent must not make the node its own ancestor.
		if err := s.checkCycle(ctx, id, *params.Parent); err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, id, params)
}

// checkCycle walks up from newParent through the in-memory parent chain and
// fails if it reaches id.
func (s *service) checkCycle(ctx context.Context, id, newParent string) error {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]*Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	visited := map[string]bool{}
	for cur := newParent; cur != ""; {
		if cur == id {
			return ErrParentCycle
		}
		if visited[cur] {
			return ErrParentCycle
		}
		visited[cur] = true

		node, ok := byID[cur]
		if !ok || node.Parent == nil {
			break
		}
		cur = *node.Parent
	}

	return nil
}

func (s *service) FindChildren(ctx context.Context, parentID string) ([]*Category, error) {
	if _, err := uuid.Parse(parentID); err != nil {
		return nil, ErrInvalidCategoryID
	}
	return s.repo.FindByParent(ctx, parentID)
}

// FindTree loads the whole collection once and assembles it in two passes:
// pass 1 builds an id→node map with empty children, pass 2 links each node
// under its parent or collects it as a root. A node whose parent does not
// resolve is treated as a root.
func (s *service) FindTree(ctx context.Context) ([]*TreeNode, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "FindTree"),
	)

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		log.Error("failed to load categories", zap.Error(err))
		return nil, err
	}

	nodes := make(map[string]*TreeNode, len(all))
	for _, c := range all {
		nodes[c.ID] = &TreeNode{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Parent:      c.Parent,
			Children:    []*TreeNode{},
		}
	}

	roots := []*TreeNode{}
	for _, c := range all {
		node := nodes[c.ID]
		if c.Parent != nil {
			if parent, ok := nodes[*c.Parent]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	log.Info("FindTree success",
		zap.Int("total", len(all)),
		zap.Int("roots", len(roots)),
	)
	return roots, nil
}

// GetPath returns the chain from the topmost ancestor down to id, inclusive.
// The walk happens over an in-memory map, with a visited set guarding
// against parent cycles.
func (s *service) GetPath(ctx context.Context, id string) ([]*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidCategoryID
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	start, ok := byID[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}

	path := []*Category{}
	visited := map[string]bool{}
	for cur := start; cur != nil; {
		if visited[cur.ID] {
			return nil, ErrParentCycle
		}
		visited[cur.ID] = true
		path = append([]*Category{cur}, path...)

		if cur.Parent == nil {
			break
		}
		cur = byID[*cur.Parent]
	}

	return path, nil
}

// GetStats computes collection counts and the longest root-to-leaf chain.
// Depth of a root is 1.
func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	// A dangling parent reference puts the node with the roots, so the
	// root/child split always sums to the total.
	children := map[string][]string{}
	roots := []string{}
	withParent := 0
	for _, c := range all {
		if c.Parent != nil {
			if _, ok := byID[*c.Parent]; ok {
				withParent++
				children[*c.Parent] = append(children[*c.Parent], c.ID)
				continue
			}
		}
		roots = append(roots, c.ID)
	}

	stats := &Stats{
		Total:      len(all),
		Roots:      len(roots),
		WithParent: withParent,
	}

	// Iterative DFS over the in-memory children map, no further store calls.
	type frame struct {
		id    string
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for _, r := range roots {
		stack = append(stack, frame{r, 1})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > stats.MaxDepth {
			stats.MaxDepth = f.depth
		}
		for _, child := range children[f.id] {
			stack = append(stack, frame{child, f.depth + 1})
		}
	}

	return stats, nil
}

// Remove deletes the category together with its entire subtree,
// grandchildren included.
func (s *service) Remove(ctx context.Context, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Remove"),
		zap.String("category_id", id),
	)

	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidCategoryID
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}

	children := map[string][]string{}
	found := false
	for _, c := range all {
		if c.ID == id {
			found = true
		}
		if c.Parent != nil {
			children[*c.Parent] = append(children[*c.Parent], c.ID)
		}
	}
	if !found {
		return ErrCategoryNotFound
	}

	// Collect the subtree breadth-first; the visited set keeps a malformed
	// parent cycle from looping.
	subtree := []string{id}
	visited := map[string]bool{id: true}
	for i := 0; i < len(subtree); i++ {
		for _, child := range children[subtree[i]] {
			if !visited[child] {
				visited[child] = true
				subtree = append(subtree, child)
			}
		}
	}

	deleted, err := s.repo.Delete(ctx, subtree)
	if err != nil {
		log.Error("failed to delete category subtree", zap.Error(err))
		return err
	}

	log.Info("Remove category success", zap.Int64("deleted", deleted))
	return nil
}

func (s *service) ToggleActive(ctx context.Context, id string) (*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidCategoryID
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.repo.SetActive(ctx, id, !c.IsActive)
}

func (s *service) UpdateOrder(ctx context.Context, id string, order int) (*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidCategoryID
	}
	return s.repo.SetOrder(ctx, id, order)
}

// Search matches the name case-insensitively. An empty query returns an
// empty result set, not the full collection.
func (s *service) Search(ctx context.Context, query string) ([]*Category, error) {
	if strings.TrimSpace(query) == "" {
		return []*Category{}, nil
	}
	return s.repo.Search(ctx, query)
}
