package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/internal/testutil"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repository.NewRepos(db)
	ctx := context.Background()

	require.NoError(t, seed(ctx, repos))
	require.NoError(t, seed(ctx, repos))

	cats, err := repos.Categories.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(seedCatalog))

	items, total, err := repos.Books.Find(ctx, model.BookQuery{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Len(t, items, 7)

	carousels, err := repos.Carousels.ListEnabled(ctx)
	require.NoError(t, err)
	assert.Len(t, carousels, 3)
}

func TestSeedBooksHaveConsistentPrices(t *testing.T) {
	for _, c := range seedCatalog {
		for _, sb := range c.books {
			b, err := sb.model(1)
			require.NoError(t, err)
			assert.False(t, b.SellingPrice.GreaterThan(b.OriginalPrice), sb.isbn)
		}
	}
}
