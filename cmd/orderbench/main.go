package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/bookstore/config"
	"github.com/d60-Lab/bookstore/internal/apperr"
	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/internal/service"
	"github.com/d60-Lab/bookstore/pkg/database"
)

var (
	buyers = flag.Int("buyers", 200, "并发下单用户数")
	stock  = flag.Int("stock", 50, "图书初始库存")
	qty    = flag.Int("qty", 1, "每单购买数量 (1-5)")
)

type benchResult struct {
	duration  time.Duration
	success   int64
	soldOut   int64
	failed    int64
	latencies []time.Duration
}

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	mustDo(repository.AutoMigrate(db))

	repos := repository.NewRepos(db)
	orders := service.NewOrderService(repos, repository.NewUnitOfWork(db))

	fmt.Println("===== 抢购压测 =====")
	fmt.Printf("数据库: %s\n", cfg.Database.Driver)
	fmt.Printf("并发用户: %d | 初始库存: %d | 每单数量: %d\n\n", *buyers, *stock, *qty)

	book := prepareBook(ctx, repos)
	users := prepareBuyers(ctx, repos, *buyers)

	res := race(ctx, orders, book.ID, users)
	printResult(res)

	left := must(repos.Inventory.Stock(ctx, book.ID))
	expected := *stock - int(res.success)*(*qty)
	fmt.Printf("\n剩余库存: %d (期望 %d)\n", left, expected)
	if left != expected || left < 0 {
		fmt.Println("❌ 库存不一致")
		os.Exit(1)
	}
	fmt.Println("✅ 库存一致，没有超卖")
}

type buyer struct {
	userID    int64
	addressID int64
}

func prepareBook(ctx context.Context, repos *repository.Repos) *model.Book {
	tag := uuid.NewString()[:8]
	b := &model.Book{
		ISBN:          "bench-" + tag,
		Title:         "压测图书 " + tag,
		Author:        "bench",
		OriginalPrice: decimal.RequireFromString("39.90"),
		SellingPrice:  decimal.RequireFromString("29.90"),
		StockQuantity: *stock,
	}
	mustDo(repos.Books.Create(ctx, b))
	return b
}

func prepareBuyers(ctx context.Context, repos *repository.Repos, n int) []buyer {
	out := make([]buyer, 0, n)
	for i := 0; i < n; i++ {
		u := &model.User{
			Username:     fmt.Sprintf("bench_%s_%d", uuid.NewString()[:8], i),
			PasswordHash: "-",
			Status:       "ACTIVE",
			Role:         model.RoleUser,
		}
		mustDo(repos.Users.Create(ctx, u))
		a := &model.UserAddress{
			UserID:         u.ID,
			RecipientName:  u.Username,
			RecipientPhone: "13800000000",
			Province:       "P",
			City:           "C",
			District:       "D",
			DetailAddress:  "bench",
			IsDefault:      true,
		}
		mustDo(repos.Addresses.Create(ctx, a))
		out = append(out, buyer{userID: u.ID, addressID: a.ID})
	}
	return out
}

// race 所有用户同时下单同一本书
func race(ctx context.Context, orders service.OrderService, bookID int64, users []buyer) *benchResult {
	var (
		res   benchResult
		mu    sync.Mutex
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for _, u := range users {
		wg.Add(1)
		go func(u buyer) {
			defer wg.Done()
			<-start
			t := time.Now()
			_, err := orders.CreateOrder(ctx, u.userID, service.CreateOrderRequest{
				AddressID:     u.addressID,
				PaymentMethod: "BENCH",
				Items:         []service.OrderItemRequest{{BookID: bookID, Quantity: *qty}},
			})
			latency := time.Since(t)
			switch {
			case err == nil:
				atomic.AddInt64(&res.success, 1)
			case apperr.Is(err, apperr.KindBadRequest):
				atomic.AddInt64(&res.soldOut, 1)
			default:
				if n := atomic.AddInt64(&res.failed, 1); n <= 10 {
					fmt.Printf("下单失败 [%d]: %v\n", n, err)
				}
			}
			mu.Lock()
			res.latencies = append(res.latencies, latency)
			mu.Unlock()
		}(u)
	}

	begin := time.Now()
	close(start)
	wg.Wait()
	res.duration = time.Since(begin)
	sort.Slice(res.latencies, func(i, j int) bool { return res.latencies[i] < res.latencies[j] })
	return &res
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	i := int(math.Ceil(float64(len(sorted))*p)) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

func printResult(r *benchResult) {
	total := r.success + r.soldOut + r.failed
	fmt.Printf("耗时: %v\n", r.duration)
	fmt.Printf("总请求: %d | 成功: %d | 库存不足: %d | 其他失败: %d\n", total, r.success, r.soldOut, r.failed)
	if r.duration > 0 {
		fmt.Printf("QPS: %.2f\n", float64(total)/r.duration.Seconds())
	}
	fmt.Printf("P50: %v | P95: %v | P99: %v\n",
		percentile(r.latencies, 0.50), percentile(r.latencies, 0.95), percentile(r.latencies, 0.99))
}

func must[T any](v T, err error) T {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
