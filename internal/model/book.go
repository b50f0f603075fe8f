package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book 图书
type Book struct {
	ID            int64           `json:"id"`
	ISBN          string          `json:"isbn"`
	Title         string          `json:"title"`
	Subtitle      string          `json:"subtitle,omitempty"`
	Author        string          `json:"author"`
	Publisher     string          `json:"publisher"`
	PublishDate   *time.Time      `json:"publish_date,omitempty"`
	CategoryID    int64           `json:"category_id"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockQuantity int             `json:"stock_quantity"`
	SalesVolume   int             `json:"sales_volume"`
	CoverImage    string          `json:"cover_image"`
	Description   string          `json:"description,omitempty"`
	Rating        decimal.Decimal `json:"rating"`
	ReviewCount   int             `json:"review_count"`
	IsHot         bool            `json:"is_hot"`
	IsNew         bool            `json:"is_new"`
	IsRecommended bool            `json:"is_recommended"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BookListItem 列表页字段
type BookListItem struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	CoverImage    string          `json:"cover_image"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Rating        decimal.Decimal `json:"rating"`
}

// BookDetail 详情页字段
type BookDetail struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	CoverImage    string          `json:"cover_image"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Discount      int             `json:"discount"`
	Rating        decimal.Decimal `json:"rating"`
	Reviews       int             `json:"reviews"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Stock         int             `json:"stock"`
	IsAvailable   bool            `json:"is_available"`
	RelatedBooks  []BookListItem  `json:"related_books"`
}

// StockSnapshot 下单时读取的库存与价格快照
type StockSnapshot struct {
	BookID        int64
	Title         string
	CoverImage    string
	SellingPrice  decimal.Decimal
	StockQuantity int
}

// BookSort 图书排序方式
type BookSort string

const (
	SortRecommended BookSort = "recommended"
	SortNewest      BookSort = "newest"
	SortPriceAsc    BookSort = "price_asc"
	SortPriceDesc   BookSort = "price_desc"
)

// ParseBookSort 未识别的排序方式按 recommended 处理
func ParseBookSort(s string) BookSort {
	switch BookSort(s) {
	case SortNewest, SortPriceAsc, SortPriceDesc:
		return BookSort(s)
	default:
		return SortRecommended
	}
}

// BookQuery 图书检索条件
type BookQuery struct {
	Keyword    string
	CategoryID int64
	Sort       BookSort
	Offset     int
	Limit      int
}

// BookRelationType 关联类型
type BookRelationType string

const (
	RelationSimilar    BookRelationType = "similar"
	RelationAlsoBought BookRelationType = "also_bought"
	RelationSameAuthor BookRelationType = "same_author"
)
