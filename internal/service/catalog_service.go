package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/catalogcache"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
)

const (
	maxBookLimit    = 100
	defaultTopN     = 10
	maxTopN         = 50
	defaultRelatedN = 4
	maxRelatedN     = 20
)

// BookSearch 图书检索参数
type BookSearch struct {
	Keyword    string
	CategoryID int64
	Sort       string
	Page       int
	Limit      int
}

// CatalogService 图书、分类、轮播的只读查询
type CatalogService interface {
	FindBooks(ctx context.Context, q BookSearch) (*Page[model.BookListItem], error)
	GetBook(ctx context.Context, id int64) (*model.BookDetail, error)
	HotBooks(ctx context.Context, n int) ([]model.BookListItem, error)
	NewBooks(ctx context.Context, n int) ([]model.BookListItem, error)
	RelatedBooks(ctx context.Context, bookID int64, n int) ([]model.BookListItem, error)
	BooksByCategory(ctx context.Context, categoryID int64, page, limit int, sort string) (*Page[model.BookListItem], error)

	Categories(ctx context.Context) ([]model.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	CategoryByID(ctx context.Context, id int64) (*model.Category, error)
	CategoryTree(ctx context.Context) ([]*model.CategoryNode, error)

	Carousels(ctx context.Context) ([]model.Carousel, error)
}

type catalogService struct {
	books      repository.BookRepository
	categories repository.CategoryRepository
	carousels  repository.CarouselRepository
	cache      *catalogcache.Cache
}

// NewCatalogService cache 可以为 nil 或未启用
func NewCatalogService(repos *repository.Repos, cache *catalogcache.Cache) CatalogService {
	if cache == nil {
		cache = catalogcache.New(nil, 0)
	}
	return &catalogService{
		books:      repos.Books,
		categories: repos.Categories,
		carousels:  repos.Carousels,
		cache:      cache,
	}
}

func (s *catalogService) FindBooks(ctx context.Context, q BookSearch) (*Page[model.BookListItem], error) {
	offset, err := checkPage(q.Page, q.Limit, maxBookLimit)
	if err != nil {
		return nil, err
	}
	books, total, err := s.books.Find(ctx, model.BookQuery{
		Keyword:    strings.TrimSpace(q.Keyword),
		CategoryID: q.CategoryID,
		Sort:       model.ParseBookSort(q.Sort),
		Offset:     offset,
		Limit:      q.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &Page[model.BookListItem]{Items: toListItems(books), Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *catalogService) GetBook(ctx context.Context, id int64) (*model.BookDetail, error) {
	if id <= 0 {
		return nil, apperr.BadRequest("invalid book id")
	}
	b, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("book %d not found", id)
		}
		return nil, err
	}

	var categoryName string
	if c, err := s.categories.GetByID(ctx, b.CategoryID); err == nil {
		categoryName = c.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	related, err := s.related(ctx, b, defaultRelatedN)
	if err != nil {
		return nil, err
	}

	return &model.BookDetail{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		CoverImage:    b.CoverImage,
		Price:         b.SellingPrice,
		OriginalPrice: b.OriginalPrice,
		Discount:      DiscountPercent(b.SellingPrice, b.OriginalPrice),
		Rating:        b.Rating,
		Reviews:       b.ReviewCount,
		Description:   b.Description,
		Category:      categoryName,
		Stock:         b.StockQuantity,
		IsAvailable:   b.StockQuantity > 0,
		RelatedBooks:  related,
	}, nil
}

// DiscountPercent 售价占原价的百分比（四舍五入），无折扣时为 0
func DiscountPercent(selling, original decimal.Decimal) int {
	if !selling.IsPositive() || !original.IsPositive() || selling.GreaterThanOrEqual(original) {
		return 0
	}
	return int(selling.Div(original).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

func (s *catalogService) HotBooks(ctx context.Context, n int) ([]model.BookListItem, error) {
	n = clampTop(n, defaultTopN, maxTopN)
	return catalogcache.Fetch(ctx, s.cache, catalogcache.KeyHotBooks(n), func(ctx context.Context) ([]model.BookListItem, error) {
		books, err := s.books.ListHot(ctx, n)
		if err != nil {
			return nil, err
		}
		return toListItems(books), nil
	})
}

func (s *catalogService) NewBooks(ctx context.Context, n int) ([]model.BookListItem, error) {
	n = clampTop(n, defaultTopN, maxTopN)
	return catalogcache.Fetch(ctx, s.cache, catalogcache.KeyNewBooks(n), func(ctx context.Context) ([]model.BookListItem, error) {
		books, err := s.books.ListNew(ctx, n)
		if err != nil {
			return nil, err
		}
		return toListItems(books), nil
	})
}

func (s *catalogService) RelatedBooks(ctx context.Context, bookID int64, n int) ([]model.BookListItem, error) {
	if bookID <= 0 {
		return nil, apperr.BadRequest("invalid book id")
	}
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("book %d not found", bookID)
		}
		return nil, err
	}
	return s.related(ctx, b, clampTop(n, defaultRelatedN, maxRelatedN))
}

// related 优先取 book_relations，没有时退化为同分类热销
func (s *catalogService) related(ctx context.Context, b *model.Book, n int) ([]model.BookListItem, error) {
	books, err := s.books.ListRelated(ctx, b.ID, n)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		books, err = s.books.ListSameCategory(ctx, b.CategoryID, b.ID, n)
		if err != nil {
			return nil, err
		}
	}
	return toListItems(books), nil
}

func (s *catalogService) BooksByCategory(ctx context.Context, categoryID int64, page, limit int, sort string) (*Page[model.BookListItem], error) {
	if categoryID <= 0 {
		return nil, apperr.BadRequest("invalid category id")
	}
	if _, err := s.CategoryByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.FindBooks(ctx, BookSearch{CategoryID: categoryID, Sort: sort, Page: page, Limit: limit})
}

func (s *catalogService) Categories(ctx context.Context) ([]model.Category, error) {
	return catalogcache.Fetch(ctx, s.cache, catalogcache.KeyCategories, s.categories.ListActive)
}

func (s *catalogService) CategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperr.BadRequest("slug is required")
	}
	c, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category %q not found", slug)
		}
		return nil, err
	}
	return c, nil
}

func (s *catalogService) CategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if id <= 0 {
		return nil, apperr.BadRequest("invalid category id")
	}
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category %d not found", id)
		}
		return nil, err
	}
	return c, nil
}

func (s *catalogService) CategoryTree(ctx context.Context) ([]*model.CategoryNode, error) {
	return catalogcache.Fetch(ctx, s.cache, catalogcache.KeyCategoryTree, func(ctx context.Context) ([]*model.CategoryNode, error) {
		cats, err := s.categories.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return BuildCategoryTree(cats), nil
	})
}

// BuildCategoryTree 按 ParentID 组装树，保持输入顺序；父节点不在列表中的视为根
func BuildCategoryTree(cats []model.Category) []*model.CategoryNode {
	nodes := make(map[int64]*model.CategoryNode, len(cats))
	for _, c := range cats {
		nodes[c.ID] = &model.CategoryNode{Category: c}
	}
	roots := make([]*model.CategoryNode, 0)
	for _, c := range cats {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

func (s *catalogService) Carousels(ctx context.Context) ([]model.Carousel, error) {
	return catalogcache.Fetch(ctx, s.cache, catalogcache.KeyCarousels, s.carousels.ListEnabled)
}

func toListItems(books []model.Book) []model.BookListItem {
	out := make([]model.BookListItem, len(books))
	for i, b := range books {
		out[i] = model.BookListItem{
			ID:            b.ID,
			Title:         b.Title,
			Author:        b.Author,
			CoverImage:    b.CoverImage,
			Price:         b.SellingPrice,
			OriginalPrice: b.OriginalPrice,
			Rating:        b.Rating,
		}
	}
	return out
}
