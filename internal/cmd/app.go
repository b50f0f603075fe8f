package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/bookstore/config"
	"github.com/d60-Lab/bookstore/internal/api/handler"
	"github.com/d60-Lab/bookstore/internal/catalogcache"
	"github.com/d60-Lab/bookstore/internal/repository"
	"github.com/d60-Lab/bookstore/internal/service"
	"github.com/d60-Lab/bookstore/pkg/database"
	"github.com/d60-Lab/bookstore/pkg/jwt"
	"github.com/d60-Lab/bookstore/pkg/logger"
)

// bootstrap 加载配置、初始化日志并连接数据库
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

type app struct {
	handler *handler.Handler
	auth    service.AuthService
	cache   *catalogcache.Cache
}

// wire 组装仓储、服务与 Handler；rdb 可以为 nil
func wire(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *app {
	repos := repository.NewRepos(db)
	uow := repository.NewUnitOfWork(db)
	cache := catalogcache.New(rdb, cfg.Redis.CacheTTL)
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	auth := service.NewAuthService(repos, tokens, service.NewTokenStore(rdb))

	checks := map[string]handler.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	h := handler.New(handler.Services{
		Auth:     auth,
		User:     service.NewUserService(repos),
		Catalog:  service.NewCatalogService(repos, cache),
		Address:  service.NewAddressService(repos, uow),
		Order:    service.NewOrderService(repos, uow),
		Wishlist: service.NewWishlistService(repos),
	}, checks)
	return &app{handler: h, auth: auth, cache: cache}
}
