package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/drivelink/backoffice/internal"
	adminPostgres "github.com/drivelink/backoffice/internal/admin/postgres"
	"github.com/drivelink/backoffice/internal/authz"
	authzPostgres "github.com/drivelink/backoffice/internal/authz/postgres"
	"github.com/drivelink/backoffice/internal/core/events"
	"github.com/drivelink/backoffice/internal/kyc"
	kycPostgres "github.com/drivelink/backoffice/internal/kyc/postgres"
	"github.com/drivelink/backoffice/internal/role"
	rolePostgres "github.com/drivelink/backoffice/internal/role/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// app holds the infrastructure and domain services shared by every command.
type app struct {
	cfg    *internal.Config
	logger *slog.Logger

	gormDB *gorm.DB
	sqlxDB *sqlx.DB
	redis  *redis.Client

	bus       *events.EventBus
	roleSync  *authz.RoleSyncService
	resolver  *authz.Resolver
	warmer    *authz.CacheWarmer
	admins    *adminPostgres.AdminRepository
	kycRepo   *kycPostgres.KycRepository
	roleRepo  role.RepositoryAPI
	kyc       *kyc.Service
	roles     *role.Service
	authzRepo *authzPostgres.Store
}

// newApp connects to postgres and redis, loads the menu and wires the event
// subscribers. A missing or malformed menu file is fatal.
func newApp(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (*app, error) {
	menu, err := authz.LoadMenu(cfg.Authorization.MenuFile)
	if err != nil {
		return nil, err
	}

	gormDB, err := initGorm(cfg.Database)
	if err != nil {
		return nil, err
	}
	sqlxDB, err := initDB(cfg.Database)
	if err != nil {
		_ = closeGorm(gormDB)
		return nil, err
	}
	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		_ = sqlxDB.Close()
		_ = closeGorm(gormDB)
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		gormDB: gormDB,
		sqlxDB: sqlxDB,
		redis:  redisClient,
		bus:    events.NewEventBus(logger),
	}

	a.authzRepo = authzPostgres.NewStore(sqlxDB)
	cache := authz.NewRedisPermissionCache(redisClient, cfg.Authorization.CacheKeyPrefix, cfg.Authorization.PermissionCacheTTL)
	a.roleSync = authz.NewRoleSyncService(a.authzRepo, cache, logger)
	a.resolver = authz.NewResolver(a.roleSync, a.authzRepo, menu, logger)
	a.warmer = authz.NewCacheWarmer(a.roleSync, authz.WarmerConfig{
		MaxWorkers:   cfg.Authorization.WarmerWorkers,
		JobQueueSize: cfg.Authorization.WarmerQueueSize,
	}, logger)

	a.admins = adminPostgres.NewAdminRepository(gormDB)
	a.kycRepo = kycPostgres.NewKycRepository(gormDB)
	a.roleRepo = rolePostgres.NewRoleRepository(gormDB)

	a.kyc = kyc.NewService(a.kycRepo, a.bus, kyc.RejectionPolicy(cfg.Kyc.RejectionPolicy), logger)
	a.roles = role.NewService(a.roleRepo, a.bus, logger)

	kyc.NewAuditRecorder(a.kycRepo, logger).Register(a.bus)
	role.NewCacheInvalidator(a.roleSync, a.warmer, a.roleRepo, logger).Register(a.bus)

	return a, nil
}

func (a *app) Close() {
	a.warmer.Shutdown()
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", "error", err)
	}
	if err := a.sqlxDB.Close(); err != nil {
		a.logger.Error("database close error", "error", err)
	}
	if err := closeGorm(a.gormDB); err != nil {
		a.logger.Error("gorm database close error", "error", err)
	}
}

func closeGorm(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// initDB opens the pgx-backed sqlx pool used by the permission store and health checks.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func initGorm(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

func initRedis(ctx context.Context, cfg internal.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
