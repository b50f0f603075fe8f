package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/catalogcache"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/internal/testutil"
)

type catalogFixture struct {
	db    *gorm.DB
	repos *repository.Repos
	svc   CatalogService
	fic   *model.Category
	sci   *model.Category
}

func newCatalogFixture(t *testing.T, cache *catalogcache.Cache) *catalogFixture {
	db := testutil.NewDB(t)
	repos := repository.NewRepos(db)
	return &catalogFixture{
		db:    db,
		repos: repos,
		svc:   NewCatalogService(repos, cache),
		fic:   testutil.SeedCategory(t, db, "fiction", nil),
		sci:   testutil.SeedCategory(t, db, "science", nil),
	}
}

func (f *catalogFixture) book(t *testing.T, title, price string, sales int, cat int64, published string) *model.Book {
	p := dec(price)
	d, err := time.Parse("2006-01-02", published)
	require.NoError(t, err)
	b := &model.Book{
		ISBN:          "isbn-" + title,
		Title:         title,
		Author:        "author " + title,
		CategoryID:    cat,
		OriginalPrice: p,
		SellingPrice:  p,
		StockQuantity: 1,
		SalesVolume:   sales,
		PublishDate:   &d,
	}
	require.NoError(t, f.repos.Books.Create(context.Background(), b))
	return b
}

func titles(items []model.BookListItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestFindBooksSortAndPaging(t *testing.T) {
	f := newCatalogFixture(t, nil)
	ctx := context.Background()
	f.book(t, "alpha", "30.00", 5, f.fic.ID, "2020-01-01")
	f.book(t, "beta", "10.00", 50, f.fic.ID, "2023-01-01")
	f.book(t, "gamma", "20.00", 20, f.sci.ID, "2021-06-01")

	page, err := f.svc.FindBooks(ctx, BookSearch{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, []string{"beta", "gamma", "alpha"}, titles(page.Items))

	page, err = f.svc.FindBooks(ctx, BookSearch{Sort: "price_asc", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "gamma", "alpha"}, titles(page.Items))

	page, err = f.svc.FindBooks(ctx, BookSearch{Sort: "price_desc", Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "gamma"}, titles(page.Items))
	assert.Equal(t, int64(3), page.Total)

	page, err = f.svc.FindBooks(ctx, BookSearch{Sort: "newest", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, titles(page.Items))

	page, err = f.svc.FindBooks(ctx, BookSearch{Sort: "no-such-sort", CategoryID: f.fic.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "alpha"}, titles(page.Items))

	page, err = f.svc.FindBooks(ctx, BookSearch{Keyword: "author gam", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma"}, titles(page.Items))

	_, err = f.svc.FindBooks(ctx, BookSearch{Page: 0, Limit: 10})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	_, err = f.svc.FindBooks(ctx, BookSearch{Page: 1, Limit: 101})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}

func TestGetBookDetail(t *testing.T) {
	f := newCatalogFixture(t, nil)
	ctx := context.Background()

	b := &model.Book{
		ISBN:          "978-1",
		Title:         "discounted",
		Author:        "x",
		CategoryID:    f.fic.ID,
		OriginalPrice: dec("30.00"),
		SellingPrice:  dec("20.00"),
		StockQuantity: 0,
	}
	require.NoError(t, f.repos.Books.Create(ctx, b))
	peer := f.book(t, "peer", "9.00", 3, f.fic.ID, "2022-01-01")
	f.book(t, "elsewhere", "9.00", 99, f.sci.ID, "2022-01-01")

	d, err := f.svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, d.Discount)
	assert.Equal(t, "fiction", d.Category)
	assert.False(t, d.IsAvailable)
	require.Len(t, d.RelatedBooks, 1)
	assert.Equal(t, peer.ID, d.RelatedBooks[0].ID)

	_, err = f.svc.GetBook(ctx, 0)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	_, err = f.svc.GetBook(ctx, 12345)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 67, DiscountPercent(dec("20"), dec("30")))
	assert.Equal(t, 80, DiscountPercent(dec("39.92"), dec("49.90")))
	assert.Equal(t, 0, DiscountPercent(dec("30"), dec("30")))
	assert.Equal(t, 0, DiscountPercent(dec("40"), dec("30")))
	assert.Equal(t, 0, DiscountPercent(dec("0"), dec("30")))
	assert.Equal(t, 0, DiscountPercent(dec("10"), dec("0")))
}

func TestRelatedPrefersExplicitRelations(t *testing.T) {
	f := newCatalogFixture(t, nil)
	ctx := context.Background()
	a := f.book(t, "a", "1.00", 1, f.fic.ID, "2020-01-01")
	f.book(t, "b", "1.00", 10, f.fic.ID, "2020-01-01")
	c := f.book(t, "c", "1.00", 1, f.sci.ID, "2020-01-01")

	got, err := f.svc.RelatedBooks(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, titles(got))

	require.NoError(t, f.repos.Books.AddRelation(ctx, a.ID, c.ID, model.RelationAlsoBought))
	require.NoError(t, f.repos.Books.AddRelation(ctx, a.ID, c.ID, model.RelationAlsoBought))
	got, err = f.svc.RelatedBooks(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, titles(got))

	_, err = f.svc.RelatedBooks(ctx, 999, 4)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestHotAndNewBooks(t *testing.T) {
	f := newCatalogFixture(t, nil)
	ctx := context.Background()
	for i, title := range []string{"old", "mid", "recent"} {
		f.book(t, title, "5.00", i*10, f.fic.ID, []string{"2001-01-01", "2011-01-01", "2021-01-01"}[i])
	}

	hot, err := f.svc.HotBooks(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"recent", "mid"}, titles(hot))

	fresh, err := f.svc.NewBooks(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"recent", "mid", "old"}, titles(fresh))
}

func TestCategoryQueriesAndTree(t *testing.T) {
	f := newCatalogFixture(t, nil)
	ctx := context.Background()
	scifi := testutil.SeedCategory(t, f.db, "scifi", &f.fic.ID)
	missing := int64(9999)
	orphan := testutil.SeedCategory(t, f.db, "orphan", &missing)

	cats, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 4)

	got, err := f.svc.CategoryBySlug(ctx, "scifi")
	require.NoError(t, err)
	assert.Equal(t, scifi.ID, got.ID)
	_, err = f.svc.CategoryBySlug(ctx, " ")
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	_, err = f.svc.CategoryBySlug(ctx, "nope")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.svc.CategoryByID(ctx, 4242)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	tree, err := f.svc.CategoryTree(ctx)
	require.NoError(t, err)
	roots := map[string]*model.CategoryNode{}
	for _, n := range tree {
		roots[n.Name] = n
	}
	require.Contains(t, roots, "fiction")
	require.Contains(t, roots, "orphan")
	assert.Len(t, tree, 3)
	require.Len(t, roots["fiction"].Children, 1)
	assert.Equal(t, scifi.ID, roots["fiction"].Children[0].ID)
	assert.Equal(t, orphan.ID, roots["orphan"].ID)

	_, err = f.svc.BooksByCategory(ctx, 4242, 1, 10, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	page, err := f.svc.BooksByCategory(ctx, f.sci.ID, 1, 10, "")
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestCarouselsServedFromCache(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	cache := catalogcache.New(rdb, time.Minute)
	f := newCatalogFixture(t, cache)
	ctx := context.Background()

	for i, enabled := range []bool{true, false, true} {
		require.NoError(t, f.repos.Carousels.Create(ctx, &model.Carousel{
			ImageURL:  "/img.png",
			Title:     []string{"second", "hidden", "first"}[i],
			SortOrder: []int{2, 0, 1}[i],
			IsEnabled: enabled,
		}))
	}

	list, err := f.svc.Carousels(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Title)

	list, err = f.svc.Carousels(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	cnt := cache.Counters()
	assert.Equal(t, int64(1), cnt.Loads)
	assert.Equal(t, int64(1), cnt.Hits)
}
