package filters

import (
	"context"
	"sync"
	"testing"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSalesStore struct {
	mock.Mock
	mu sync.Mutex
}

func (m *mockSalesStore) QueryObservations(ctx context.Context, sel domain.FilterSelection) ([]store.SalesRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(ctx, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.SalesRecord), args.Error(1)
}

func (m *mockSalesStore) DistinctValues(
	ctx context.Context,
	dim domain.Dimension,
	upstream domain.FilterSelection,
	minCount int,
) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(ctx, dim, upstream, minCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newResolverFixture(t *testing.T) (*mockSalesStore, Resolver) {
	t.Helper()
	mockStore := new(mockSalesStore)
	return mockStore, NewResolver(mockStore, Config{})
}

func TestResolver_ResolveOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("all lists start with All and are sorted without duplicates", func(t *testing.T) {
		store, resolver := newResolverFixture(t)
		store.On("DistinctValues", mock.Anything, domain.DimCountry, mock.Anything, 0).
			Return([]string{" Germany ", "France", "Germany", ""}, nil)
		store.On("DistinctValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]string{}, nil)

		options, err := resolver.ResolveOptions(ctx, domain.FilterSelection{})
		require.NoError(t, err)

		assert.Equal(t, []string{"All", "France", "Germany"}, options[domain.DimCountry])
		for _, spec := range Chain {
			list := options[spec.Dimension]
			require.NotEmpty(t, list)
			assert.Equal(t, "All", list[0])
		}
	})

	t.Run("city applies the minimum observation threshold", func(t *testing.T) {
		store, resolver := newResolverFixture(t)
		store.On("DistinctValues", mock.Anything, domain.DimCity, mock.Anything, DefaultMinObservations).
			Return([]string{"Munich"}, nil)
		store.On("DistinctValues", mock.Anything, mock.Anything, mock.Anything, 0).
			Return([]string{}, nil)

		options, err := resolver.ResolveOptions(ctx, domain.FilterSelection{})
		require.NoError(t, err)
		assert.Equal(t, []string{"All", "Munich"}, options[domain.DimCity])
		store.AssertCalled(t, "DistinctValues", mock.Anything, domain.DimCity, mock.Anything, DefaultMinObservations)
	})

	t.Run("upstream selection constrains dependent dimensions only", func(t *testing.T) {
		store, resolver := newResolverFixture(t)
		sel := domain.FilterSelection{
			domain.DimCountry: domain.NewFilterValue("Germany"),
		}

		store.On("DistinctValues", mock.Anything, domain.DimRegion,
			sel.Subset(domain.DimOrganization, domain.DimCountry), 0).
			Return([]string{"Bavaria"}, nil)
		// Organization sits above country in the hierarchy and must not see it.
		store.On("DistinctValues", mock.Anything, domain.DimOrganization, domain.FilterSelection{}, 0).
			Return([]string{"EMEA"}, nil)
		store.On("DistinctValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]string{}, nil)

		options, err := resolver.ResolveOptions(ctx, sel)
		require.NoError(t, err)
		assert.Equal(t, []string{"All", "Bavaria"}, options[domain.DimRegion])
		assert.Equal(t, []string{"All", "EMEA"}, options[domain.DimOrganization])
	})

	t.Run("query failure returns no partial result", func(t *testing.T) {
		store, resolver := newResolverFixture(t)
		store.On("DistinctValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &domain.DataAccessError{Op: "distinct sales_country", Err: assert.AnError})

		options, err := resolver.ResolveOptions(ctx, domain.FilterSelection{})
		require.Error(t, err)
		assert.Nil(t, options)

		var dataErr *domain.DataAccessError
		assert.ErrorAs(t, err, &dataErr)
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		store, resolver := newResolverFixture(t)
		store.On("DistinctValues", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]string{"b", "a"}, nil)

		first, err := resolver.ResolveOptions(ctx, domain.FilterSelection{})
		require.NoError(t, err)
		second, err := resolver.ResolveOptions(ctx, domain.FilterSelection{})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
