package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/internal/testutil"
)

func TestWishlist(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repository.NewRepos(db)
	svc := NewWishlistService(repos)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "reader")
	b1 := testutil.SeedBook(t, db, "dune", "15.00", 3, 1)
	b2 := testutil.SeedBook(t, db, "emma", "8.00", 3, 1)

	item, err := svc.Add(ctx, user.ID, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, "dune", item.Title)
	assert.True(t, item.Price.Equal(dec("15.00")))

	_, err = svc.Add(ctx, user.ID, b1.ID)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = svc.Add(ctx, user.ID, 777)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Add(ctx, user.ID, b2.ID)
	require.NoError(t, err)

	// 价格实时联表，不做快照
	require.NoError(t, repos.Books.UpdateSellingPrice(ctx, b1.ID, dec("11.00")))

	page, err := svc.List(ctx, user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, b2.ID, page.Items[0].BookID, "newest first")
	assert.True(t, page.Items[1].Price.Equal(dec("11.00")))

	ok, err := svc.Contains(ctx, user.ID, b1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Remove(ctx, user.ID, b1.ID))
	err = svc.Remove(ctx, user.ID, b1.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	ok, err = svc.Contains(ctx, user.ID, b1.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.List(ctx, user.ID, 0, 10)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}
