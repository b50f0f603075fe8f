package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/bookstore/config"
	"github.com/d60-Lab/bookstore/internal/catalogcache"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/internal/service"
	"github.com/d60-Lab/bookstore/pkg/database"
)

var (
	bookCount  = flag.Int("books", 5000, "写入的图书数量")
	categories = flag.Int("categories", 40, "分类数量")
	requests   = flag.Int("requests", 5000, "每个场景的请求数")
)

// request 首页常见的只读查询
type request struct {
	kind string
	n    int
}

type scenarioResult struct {
	durations   []time.Duration
	counters    catalogcache.Counters
	cacheKeys   int
	memoryBytes int64
}

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	mustDo(repository.AutoMigrate(db))
	repos := repository.NewRepos(db)

	fmt.Println("Setting up catalog data...")
	seedCatalog(ctx, repos)
	fmt.Printf("Catalog ready: %d books in %d categories\n", *bookCount, *categories)

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to Redis at %s: %v\n", cfg.Redis.Addr, err)
		os.Exit(1)
	}

	reqs := makeRequests(*requests)

	noCache := runScenario(ctx, service.NewCatalogService(repos, nil), nil, reqs, client)
	cache := catalogcache.New(client, cfg.Redis.CacheTTL)
	cached := runScenario(ctx, service.NewCatalogService(repos, cache), cache, reqs, client)

	fmt.Printf("\nCatalog read latency (%d req, %s + Redis)\n", len(reqs), cfg.Database.Driver)
	for _, row := range []struct {
		name string
		r    scenarioResult
	}{{"No cache", noCache}, {"Read-through", cached}} {
		fmt.Printf("%-14s avg=%v p95=%v p99=%v loads=%d hits=%d misses=%d cache_keys=%d mem=%s\n",
			row.name, avg(row.r.durations), pct(row.r.durations, 0.95), pct(row.r.durations, 0.99),
			row.r.counters.Loads, row.r.counters.Hits, row.r.counters.Misses,
			row.r.cacheKeys, formatBytes(row.r.memoryBytes),
		)
	}
}

func seedCatalog(ctx context.Context, repos *repository.Repos) {
	run := uuid.NewString()[:8]
	catIDs := make([]int64, 0, *categories)
	for i := 0; i < *categories; i++ {
		var parent *int64
		if i >= 5 {
			p := catIDs[i%5]
			parent = &p
		}
		c := &model.Category{
			Name:         fmt.Sprintf("cat-%s-%d", run, i),
			Slug:         fmt.Sprintf("cat-%s-%d", run, i),
			ParentID:     parent,
			DisplayOrder: i,
			IsActive:     true,
		}
		mustDo(repos.Categories.Create(ctx, c))
		catIDs = append(catIDs, c.ID)
	}

	rnd := rand.New(rand.NewSource(42))
	base := time.Now()
	for i := 0; i < *bookCount; i++ {
		price := decimal.New(int64(1000+rnd.Intn(9000)), -2)
		published := base.AddDate(0, 0, -rnd.Intn(3650))
		mustDo(repos.Books.Create(ctx, &model.Book{
			ISBN:          fmt.Sprintf("bench-%s-%06d", run, i),
			Title:         fmt.Sprintf("book %d", i),
			Author:        fmt.Sprintf("author %d", rnd.Intn(500)),
			CategoryID:    catIDs[rnd.Intn(len(catIDs))],
			OriginalPrice: price,
			SellingPrice:  price,
			StockQuantity: rnd.Intn(100),
			SalesVolume:   rnd.Intn(10000),
			PublishDate:   &published,
		}))
	}
	for i := 0; i < 5; i++ {
		mustDo(repos.Carousels.Create(ctx, &model.Carousel{ImageURL: "/banner.png", SortOrder: i, IsEnabled: true}))
	}
}

func runScenario(ctx context.Context, svc service.CatalogService, cache *catalogcache.Cache, reqs []request, client *redis.Client) scenarioResult {
	mustDo(client.FlushDB(ctx).Err())
	if cache != nil {
		cache.ResetCounters()
	}

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		call(ctx, svc, r)
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "catalog:*").Result()
	var memBytes int64
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		memBytes = parseRedisMemory(info)
	}

	res := scenarioResult{durations: out, cacheKeys: len(keys), memoryBytes: memBytes}
	if cache != nil {
		res.counters = cache.Counters()
	} else {
		res.counters.Loads = int64(len(reqs))
	}
	return res
}

func call(ctx context.Context, svc service.CatalogService, r request) {
	var err error
	switch r.kind {
	case "hot":
		_, err = svc.HotBooks(ctx, r.n)
	case "new":
		_, err = svc.NewBooks(ctx, r.n)
	case "tree":
		_, err = svc.CategoryTree(ctx)
	default:
		_, err = svc.Carousels(ctx)
	}
	mustDo(err)
}

func makeRequests(n int) []request {
	kinds := []string{"hot", "hot", "new", "tree", "carousels"}
	sizes := []int{5, 10, 20}
	rnd := rand.New(rand.NewSource(42))
	out := make([]request, n)
	for i := range out {
		out[i] = request{kind: kinds[rnd.Intn(len(kinds))], n: sizes[rnd.Intn(len(sizes))]}
	}
	return out
}

// parseRedisMemory 从 INFO memory 中取 used_memory
func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			n, _ := strconv.ParseInt(v, 10, 64)
			return n
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
