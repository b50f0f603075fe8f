package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/internal/testutil"
)

func newAddressService(t *testing.T) (AddressService, *model.User, *model.User) {
	db := testutil.NewDB(t)
	svc := NewAddressService(repository.NewRepos(db), repository.NewUnitOfWork(db))
	return svc, testutil.SeedUser(t, db, "alice"), testutil.SeedUser(t, db, "bob")
}

func fields(name string) model.AddressFields {
	return model.AddressFields{
		RecipientName:  name,
		RecipientPhone: "13900001111",
		Province:       "Guangdong",
		City:           "Shenzhen",
		District:       "Nanshan",
		DetailAddress:  name + " street",
	}
}

func defaultIDs(t *testing.T, svc AddressService, userID int64) []int64 {
	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	var ids []int64
	for _, a := range list {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	svc, alice, _ := newAddressService(t)
	ctx := context.Background()

	_, err := svc.GetDefault(ctx, alice.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	first, err := svc.Create(ctx, alice.ID, fields("home"))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.Create(ctx, alice.ID, fields("office"))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	def, err := svc.GetDefault(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, def.ID)
	assert.Equal(t, []int64{first.ID}, defaultIDs(t, svc, alice.ID))
}

func TestSetDefaultKeepsSingleDefault(t *testing.T) {
	svc, alice, bob := newAddressService(t)
	ctx := context.Background()

	a1, err := svc.Create(ctx, alice.ID, fields("a1"))
	require.NoError(t, err)
	a2, err := svc.Create(ctx, alice.ID, fields("a2"))
	require.NoError(t, err)
	b1, err := svc.Create(ctx, bob.ID, fields("b1"))
	require.NoError(t, err)

	got, err := svc.SetDefault(ctx, alice.ID, a2.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
	assert.Equal(t, []int64{a2.ID}, defaultIDs(t, svc, alice.ID))

	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a2.ID, list[0].ID, "default listed first")

	// 他人地址：NotFound，且不影响任何默认标记
	_, err = svc.SetDefault(ctx, alice.ID, b1.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, []int64{a2.ID}, defaultIDs(t, svc, alice.ID))
	assert.Equal(t, []int64{b1.ID}, defaultIDs(t, svc, bob.ID))

	_, err = svc.SetDefault(ctx, alice.ID, a1.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a1.ID}, defaultIDs(t, svc, alice.ID))
}

func TestDeleteDefaultPromotesNewest(t *testing.T) {
	svc, alice, _ := newAddressService(t)
	ctx := context.Background()

	a1, err := svc.Create(ctx, alice.ID, fields("a1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice.ID, fields("a2"))
	require.NoError(t, err)
	a3, err := svc.Create(ctx, alice.ID, fields("a3"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice.ID, a1.ID))
	assert.Equal(t, []int64{a3.ID}, defaultIDs(t, svc, alice.ID))

	_, err = svc.Get(ctx, alice.ID, a1.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = svc.Delete(ctx, alice.ID, a1.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteNonDefaultAndLastAddress(t *testing.T) {
	svc, alice, _ := newAddressService(t)
	ctx := context.Background()

	a1, err := svc.Create(ctx, alice.ID, fields("a1"))
	require.NoError(t, err)
	a2, err := svc.Create(ctx, alice.ID, fields("a2"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice.ID, a2.ID))
	assert.Equal(t, []int64{a1.ID}, defaultIDs(t, svc, alice.ID))

	require.NoError(t, svc.Delete(ctx, alice.ID, a1.ID))
	list, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	again, err := svc.Create(ctx, alice.ID, fields("again"))
	require.NoError(t, err)
	assert.True(t, again.IsDefault)
}

func TestUpdateLeavesDefaultFlag(t *testing.T) {
	svc, alice, bob := newAddressService(t)
	ctx := context.Background()

	a1, err := svc.Create(ctx, alice.ID, fields("a1"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, alice.ID, a1.ID, fields("renamed"))
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.RecipientName)
	assert.True(t, updated.IsDefault)

	_, err = svc.Update(ctx, bob.ID, a1.ID, fields("hijack"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	ok, err := svc.Exists(ctx, alice.ID, a1.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Exists(ctx, bob.ID, a1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
