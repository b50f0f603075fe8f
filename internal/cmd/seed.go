package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/internal/catalogcache"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/pkg/cache"
	"github.com/d60-Lab/bookstore/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo categories, books and carousels",
	Long:  "写入演示数据；分类已存在（按 slug）时跳过整个步骤。",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seedBook struct {
	isbn, title, author, publisher string
	original, selling              string
	stock, sales                   int
	published                      string
}

var seedCatalog = []struct {
	name, slug string
	books      []seedBook
}{
	{"文学小说", "fiction", []seedBook{
		{"9787020002207", "红楼梦", "曹雪芹", "人民文学出版社", "59.70", "47.80", 120, 3500, "1996-12-01"},
		{"9787544253994", "百年孤独", "加西亚·马尔克斯", "南海出版公司", "55.00", "39.60", 80, 2600, "2011-06-01"},
		{"9787506365437", "活着", "余华", "作家出版社", "45.00", "28.00", 200, 5200, "2012-08-01"},
	}},
	{"科普读物", "science", []seedBook{
		{"9787535732309", "时间简史", "史蒂芬·霍金", "湖南科学技术出版社", "45.00", "33.80", 60, 1800, "2010-04-01"},
		{"9787508647357", "人类简史", "尤瓦尔·赫拉利", "中信出版社", "68.00", "45.60", 90, 4100, "2014-11-01"},
	}},
	{"计算机", "computer", []seedBook{
		{"9787115428028", "Go 程序设计语言", "Alan A. A. Donovan", "机械工业出版社", "79.00", "79.00", 40, 900, "2017-05-01"},
		{"9787111407010", "算法导论", "Thomas H. Cormen", "机械工业出版社", "128.00", "99.00", 3, 1500, "2013-01-01"},
	}},
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer closeDB(db)

	ctx := cmd.Context()
	if err := repository.AutoMigrate(db); err != nil {
		return err
	}
	uow := repository.NewUnitOfWork(db)
	err = uow.Do(ctx, func(tx *repository.Repos) error {
		return seed(ctx, tx)
	})
	if err != nil {
		return err
	}

	rdb, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("skip cache invalidation", zap.Error(err))
		return nil
	}
	if rdb != nil {
		defer rdb.Close()
		if err := catalogcache.New(rdb, cfg.Redis.CacheTTL).InvalidateAll(ctx); err != nil {
			logger.Warn("cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}

func seed(ctx context.Context, r *repository.Repos) error {
	var all []*model.Book
	for i, c := range seedCatalog {
		if _, err := r.Categories.GetBySlug(ctx, c.slug); err == nil {
			logger.Info("category exists, skip", zap.String("slug", c.slug))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		cat := &model.Category{Name: c.name, Slug: c.slug, DisplayOrder: i + 1, IsActive: true}
		if err := r.Categories.Create(ctx, cat); err != nil {
			return fmt.Errorf("create category %s: %w", c.slug, err)
		}

		var group []*model.Book
		for _, sb := range c.books {
			b, err := sb.model(cat.ID)
			if err != nil {
				return err
			}
			if err := r.Books.Create(ctx, b); err != nil {
				return fmt.Errorf("create book %s: %w", sb.isbn, err)
			}
			group = append(group, b)
		}
		// 同分类两两互为“相似”
		for _, a := range group {
			for _, b := range group {
				if a.ID != b.ID {
					if err := r.Books.AddRelation(ctx, a.ID, b.ID, model.RelationSimilar); err != nil {
						return err
					}
				}
			}
		}
		all = append(all, group...)
		logger.Info("seeded category", zap.String("slug", c.slug), zap.Int("books", len(group)))
	}
	if len(all) == 0 {
		return nil
	}

	for i, b := range all[:min(3, len(all))] {
		err := r.Carousels.Create(ctx, &model.Carousel{
			ImageURL:   b.CoverImage,
			Title:      b.Title,
			Link:       fmt.Sprintf("/books/%d", b.ID),
			ButtonText: "立即购买",
			SortOrder:  i + 1,
			IsEnabled:  true,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (sb seedBook) model(categoryID int64) (*model.Book, error) {
	original, err := decimal.NewFromString(sb.original)
	if err != nil {
		return nil, err
	}
	selling, err := decimal.NewFromString(sb.selling)
	if err != nil {
		return nil, err
	}
	published, err := time.Parse("2006-01-02", sb.published)
	if err != nil {
		return nil, err
	}
	return &model.Book{
		ISBN:          sb.isbn,
		Title:         sb.title,
		Author:        sb.author,
		Publisher:     sb.publisher,
		PublishDate:   &published,
		CategoryID:    categoryID,
		OriginalPrice: original,
		SellingPrice:  selling,
		StockQuantity: sb.stock,
		SalesVolume:   sb.sales,
		CoverImage:    "/covers/" + sb.isbn + ".jpg",
		IsNew:         published.Year() >= 2014,
		IsHot:         sb.sales >= 3000,
	}, nil
}
