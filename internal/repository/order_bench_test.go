package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/d60-Lab/bookstore/internal/model"
)

// 库存扣减 + 回补往返，库存足够时每次都应命中
func BenchmarkInventoryDecreaseIncrease(b *testing.B) {
	repos := NewRepos(setupDB(b))
	ctx := context.Background()

	books := make([]*model.Book, 100)
	for i := range books {
		books[i] = createBook(b, repos, fmt.Sprintf("bench-%03d", i), 1_000_000)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := books[rand.Intn(len(books))].ID
		if n, err := repos.Inventory.Decrease(ctx, id, 1); err != nil || n != 1 {
			b.Fatalf("decrease: n=%d err=%v", n, err)
		}
		if err := repos.Inventory.Increase(ctx, id, 1); err != nil {
			b.Fatalf("increase: %v", err)
		}
	}
}

func BenchmarkListOrdersByUser(b *testing.B) {
	repos := NewRepos(setupDB(b))
	ctx := context.Background()

	// 一个用户 N 个订单，其中一半已取消
	const N = 2000
	amount := decimal.RequireFromString("19.90")
	for i := 0; i < N; i++ {
		status := model.OrderStatusPaid
		if i%2 == 0 {
			status = model.OrderStatusCancelled
		}
		o := &model.Order{
			OrderNo:     fmt.Sprintf("ORD-BENCH-%05d", i),
			UserID:      1,
			AddressID:   1,
			TotalAmount: amount,
			FinalAmount: amount,
			Status:      status,
		}
		if err := repos.Orders.Create(ctx, o); err != nil {
			b.Fatalf("seed order: %v", err)
		}
	}

	b.ResetTimer()
	b.Run("All", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _, _ = repos.Orders.ListByUser(ctx, 1, "", 0, 20)
		}
	})
	b.Run("ByStatus", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _, _ = repos.Orders.ListByUser(ctx, 1, model.OrderStatusPaid, 0, 20)
		}
	})
	b.Run("SumSpend", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = repos.Orders.SumSpend(ctx, 1)
		}
	})
}
