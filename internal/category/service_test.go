package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, name string, description, parentID *string) (*Category, error) {
	args := m.Called(ctx, name, description, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context) ([]*Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) FindByParent(ctx context.Context, parentID string) ([]*Category, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) FindByName(ctx context.Context, name string) (*Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Search(ctx context.Context, query string) ([]*Category, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Category), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id string, params UpdateParams) (*Category, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) SetActive(ctx context.Context, id string, active bool) (*Category, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) SetOrder(ctx context.Context, id string, order int) (*Category, error) {
	args := m.Called(ctx, id, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// --- Fixtures ---

const (
	idA = "11111111-1111-1111-1111-111111111111"
	idB = "22222222-2222-2222-2222-222222222222"
	idC = "33333333-3333-3333-3333-333333333333"
	idD = "44444444-4444-4444-4444-444444444444"
)

func strPtr(s string) *string { return &s }

// chain returns A (root) -> B (parent=A) -> C (parent=B).
func chain() []*Category {
	return []*Category{
		{ID: idA, Name: "Chocolate"},
		{ID: idB, Name: "Dark", Parent: strPtr(idA)},
		{ID: idC, Name: "Truffles", Parent: strPtr(idB)},
	}
}

// --- Tests ---

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success without parent", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		expected := &Category{ID: idA, Name: "Chocolate", IsActive: true}
		mockRepo.On("Insert", ctx, "Chocolate", (*string)(nil), (*string)(nil)).Return(expected, nil)

		res, err := svc.Create(ctx, "Chocolate", nil, nil)
		assert.NoError(t, err)
		assert.Equal(t, expected, res)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Parent must exist", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindByID", ctx, idA).Return(nil, ErrCategoryNotFound)

		_, err := svc.Create(ctx, "Dark", nil, strPtr(idA))
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Empty name", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		_, err := svc.Create(ctx, "   ", nil, nil)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("Malformed parent id", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		_, err := svc.Create(ctx, "Dark", nil, strPtr("not-a-uuid"))
		assert.ErrorIs(t, err, ErrInvalidCategoryID)
	})
}

func TestService_FindTree(t *testing.T) {
	ctx := context.Background()

	t.Run("Chain of three", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)

		roots, err := svc.FindTree(ctx)
		require.NoError(t, err)
		require.Len(t, roots, 1)

		a := roots[0]
		assert.Equal(t, idA, a.ID)
		require.Len(t, a.Children, 1)

		b := a.Children[0]
		assert.Equal(t, idB, b.ID)
		require.Len(t, b.Children, 1)
		assert.Equal(t, idC, b.Children[0].ID)
		assert.Empty(t, b.Children[0].Children)
	})

	t.Run("Unresolvable parent becomes a root", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return([]*Category{
			{ID: idA, Name: "Chocolate"},
			{ID: idB, Name: "Orphan", Parent: strPtr(idD)},
		}, nil)

		roots, err := svc.FindTree(ctx)
		require.NoError(t, err)
		assert.Len(t, roots, 2)
	})

	t.Run("Empty collection", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return([]*Category{}, nil)

		roots, err := svc.FindTree(ctx)
		assert.NoError(t, err)
		assert.Empty(t, roots)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return(nil, errors.New("db error"))

		_, err := svc.FindTree(ctx)
		assert.Error(t, err)
	})
}

func TestService_GetPath(t *testing.T) {
	ctx := context.Background()

	t.Run("Path runs topmost ancestor to node", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)

		path, err := svc.GetPath(ctx, idC)
		require.NoError(t, err)
		require.Len(t, path, 3)
		assert.Equal(t, idA, path[0].ID)
		assert.Equal(t, idB, path[1].ID)
		assert.Equal(t, idC, path[2].ID)
	})

	t.Run("Root path is itself", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)

		path, err := svc.GetPath(ctx, idA)
		require.NoError(t, err)
		require.Len(t, path, 1)
		assert.Equal(t, idA, path[0].ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)

		_, err := svc.GetPath(ctx, idD)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("Cycle detected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return([]*Category{
			{ID: idA, Name: "A", Parent: strPtr(idB)},
			{ID: idB, Name: "B", Parent: strPtr(idA)},
		}, nil)

		_, err := svc.GetPath(ctx, idA)
		assert.ErrorIs(t, err, ErrParentCycle)
	})

	t.Run("Malformed id", func(t *testing.T) {
		svc := NewService(new(MockRepository))
		_, err := svc.GetPath(ctx, "nope")
		assert.ErrorIs(t, err, ErrInvalidCategoryID)
	})
}

func TestService_GetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("Chain of three", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)

		stats, err := svc.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 1, stats.Roots)
		assert.Equal(t, 2, stats.WithParent)
		assert.Equal(t, 3, stats.MaxDepth)
		assert.Equal(t, stats.Total, stats.Roots+stats.WithParent)
	})

	t.Run("Dangling parent counts as root", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return([]*Category{
			{ID: idA, Name: "Chocolate"},
			{ID: idB, Name: "Orphan", Parent: strPtr(idD)},
		}, nil)

		stats, err := svc.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 2, stats.Roots)
		assert.Equal(t, 0, stats.WithParent)
		assert.Equal(t, 1, stats.MaxDepth)
		assert.Equal(t, stats.Total, stats.Roots+stats.WithParent)
	})

	t.Run("Two flat roots", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return([]*Category{
			{ID: idA, Name: "A"},
			{ID: idB, Name: "B"},
		}, nil)

		stats, err := svc.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Roots)
		assert.Equal(t, 1, stats.MaxDepth)
	})

	t.Run("Empty collection", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return([]*Category{}, nil)

		stats, err := svc.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
		assert.Equal(t, 0, stats.MaxDepth)
	})
}

func TestService_Remove_DeletesSubtree(t *testing.T) {
	ctx := context.Background()

	t.Run("Grandchildren go too", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)
		mockRepo.On("Delete", ctx, mock.MatchedBy(func(ids []string) bool {
			return len(ids) == 3
		})).Return(int64(3), nil)

		err := svc.Remove(ctx, idA)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Leaf removal deletes only the leaf", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)
		mockRepo.On("Delete", ctx, []string{idC}).Return(int64(1), nil)

		err := svc.Remove(ctx, idC)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)

		err := svc.Remove(ctx, idD)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestService_Update_CycleGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("Reparenting under own descendant is rejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		mockRepo.On("FindByID", ctx, idC).Return(chain()[2], nil)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)

		_, err := svc.Update(ctx, idA, UpdateParams{Parent: strPtr(idC)})
		assert.ErrorIs(t, err, ErrParentCycle)
	})

	t.Run("Valid reparent passes through", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		updated := &Category{ID: idC, Name: "Truffles", Parent: strPtr(idA)}
		mockRepo.On("FindByID", ctx, idA).Return(chain()[0], nil)
		mockRepo.On("FindAll", ctx).Return(chain(), nil)
		mockRepo.On("Update", ctx, idC, mock.Anything).Return(updated, nil)

		res, err := svc.Update(ctx, idC, UpdateParams{Parent: strPtr(idA)})
		assert.NoError(t, err)
		assert.Equal(t, updated, res)
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty query returns empty set", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		res, err := svc.Search(ctx, "   ")
		assert.NoError(t, err)
		assert.Empty(t, res)
		mockRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("Delegates to repo", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		expected := []*Category{{ID: idA, Name: "Chocolate"}}
		mockRepo.On("Search", ctx, "choc").Return(expected, nil)

		res, err := svc.Search(ctx, "choc")
		assert.NoError(t, err)
		assert.Equal(t, expected, res)
	})
}

func TestService_ToggleActive(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockRepository)
	svc := NewService(mockRepo)
	current := &Category{ID: idA, Name: "Chocolate", IsActive: true}
	toggled := &Category{ID: idA, Name: "Chocolate", IsActive: false}
	mockRepo.On("FindByID", ctx, idA).Return(current, nil)
	mockRepo.On("SetActive", ctx, idA, false).Return(toggled, nil)

	res, err := svc.ToggleActive(ctx, idA)
	assert.NoError(t, err)
	assert.False(t, res.IsActive)
	mockRepo.AssertExpectations(t)
}

func TestService_FindChildren(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)
		expected := []*Category{{ID: idB, Name: "Dark", Parent: strPtr(idA)}}
		mockRepo.On("FindByParent", ctx, idA).Return(expected, nil)

		res, err := svc.FindChildren(ctx, idA)
		assert.NoError(t, err)
		assert.Equal(t, expected, res)
	})

	t.Run("Malformed id", func(t *testing.T) {
		svc := NewService(new(MockRepository))
		_, err := svc.FindChildren(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, ErrInvalidCategoryID)
	})
}
