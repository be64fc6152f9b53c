package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/sales-atlas/pkg/models/store"
)

type mockIngestStore struct {
	mock.Mock
	records []store.SalesRecord
}

func (m *mockIngestStore) Add(ctx context.Context, records []store.SalesRecord) error {
	args := m.Called(ctx, records)
	m.records = append(m.records, records...)
	return args.Error(0)
}

func TestLoader_LoadCSV(t *testing.T) {
	t.Run("parses and stores records", func(t *testing.T) {
		ingestStore := &mockIngestStore{}
		ingestStore.On("Add", mock.Anything, mock.Anything).Return(nil)
		loader := NewLoader(nil, ingestStore)

		csv := strings.Join([]string{
			"due_date,revenue_eur,sales_amount,sales_country,product_line",
			"2024-01-15,1200.50,3,Germany,Road Bikes",
			"2024-02-15,900,2,France,",
		}, "\n")

		count, err := loader.LoadCSV(context.Background(), strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		require.Len(t, ingestStore.records, 2)
		first := ingestStore.records[0]
		assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), first.DueDate)
		assert.Equal(t, 1200.50, first.RevenueEUR)
		assert.Equal(t, 3.0, first.SalesAmount)
		assert.Equal(t, "Germany", first.Country)
		assert.Equal(t, "Road Bikes", first.ProductLine)
		assert.Empty(t, first.Organization)
	})

	t.Run("column order is free", func(t *testing.T) {
		ingestStore := &mockIngestStore{}
		ingestStore.On("Add", mock.Anything, mock.Anything).Return(nil)
		loader := NewLoader(nil, ingestStore)

		csv := "sales_country,sales_amount,due_date,revenue_eur\nSpain,5,2024-03-01,700\n"

		count, err := loader.LoadCSV(context.Background(), strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, "Spain", ingestStore.records[0].Country)
	})

	t.Run("missing required column fails before any write", func(t *testing.T) {
		ingestStore := &mockIngestStore{}
		loader := NewLoader(nil, ingestStore)

		_, err := loader.LoadCSV(context.Background(), strings.NewReader("due_date,sales_amount\n2024-01-01,1\n"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "revenue_eur")
		ingestStore.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("malformed row reports its line", func(t *testing.T) {
		ingestStore := &mockIngestStore{}
		loader := NewLoader(nil, ingestStore)

		csv := "due_date,revenue_eur,sales_amount\n2024-01-01,100,1\nnot-a-date,100,1\n"

		_, err := loader.LoadCSV(context.Background(), strings.NewReader(csv))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 3")
		assert.Contains(t, err.Error(), "due_date")
	})
}
