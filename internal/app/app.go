// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/dao"
	"github.com/haierkeys/pin-notes-service/internal/domain"
	"github.com/haierkeys/pin-notes-service/internal/service"
	pkgapp "github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/logger"
	"github.com/haierkeys/pin-notes-service/pkg/storage"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BlobRoute 本服务代理图片访问的路由
const BlobRoute = "/api/blob"

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB      // 仅 database 记录存储
	Redis  *redis.Client // 仅 redis 记录存储

	// Repository 层
	NoteRepo  domain.NoteRepository
	BlobStore domain.BlobStore
	// BlobLinks 签发和校验本服务代理的图片链接
	BlobLinks *storage.LinkSigner

	// Service 层
	Metrics        *service.Metrics
	NoteService    service.NoteService
	SessionService service.SessionService

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// Option 配置 App 的可选依赖，测试中用于替换远端存储
type Option func(*App)

// WithNoteRepository 使用指定的记录存储
func WithNoteRepository(repo domain.NoteRepository) Option {
	return func(a *App) { a.NoteRepo = repo }
}

// WithBlobStore 使用指定的图片存储
func WithBlobStore(blob domain.BlobStore) Option {
	return func(a *App) { a.BlobStore = blob }
}

// WithMetrics 使用指定的指标集合，热重载时复用已注册的指标
func WithMetrics(m *service.Metrics) Option {
	return func(a *App) { a.Metrics = m }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
func NewApp(ctx context.Context, cfg *AppConfig, lg *zap.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if lg == nil {
		return nil, fmt.Errorf("logger is required")
	}

	a := &App{
		config:     cfg,
		logger:     lg,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Metrics == nil {
		a.Metrics = service.NewMetrics(nil)
	}

	a.BlobLinks = storage.NewLinkSigner(cfg.Security.BlobLinkKey, cfg.Server.PublicURL, BlobRoute)

	// 初始化 Repository 层
	if a.NoteRepo == nil {
		repo, err := a.newNoteRepository(ctx)
		if err != nil {
			return nil, err
		}
		a.NoteRepo = repo
	}
	if a.BlobStore == nil {
		store, err := storage.NewClient(&cfg.BlobStore.Config, storage.WithLogger(lg))
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("blob store: %w", err)
		}
		a.BlobStore = dao.NewBlobRepository(store, a.BlobLinks, cfg.GetBlobURLExpiry())
	}

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(cfg.GetTokenConfig())

	// 初始化 Service 层（依赖注入）
	svcConfig := cfg.GetServiceConfig()
	a.NoteService = service.NewNoteService(a.NoteRepo, a.BlobStore, lg, a.Metrics, svcConfig)
	a.SessionService = service.NewSessionService(a.TokenManager, lg, a.Metrics, svcConfig)

	lg.Info("App container initialized successfully",
		zap.String("recordStore", cfg.RecordStore.Type),
		zap.String(logger.FieldBackend, cfg.BlobStore.Type),
		zap.Int("imageResolveConcurrency", cfg.App.ImageResolveConcurrency))

	return a, nil
}

// newNoteRepository 根据配置选择记录存储
func (a *App) newNoteRepository(ctx context.Context) (domain.NoteRepository, error) {
	cfg := a.config
	switch cfg.RecordStore.Type {
	case RecordStoreGraphQL:
		return dao.NewNoteGraphQLRepository(cfg.GetGraphQLConfig(), a.logger)
	case RecordStoreDatabase:
		db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), a.logger)
		if err != nil {
			return nil, fmt.Errorf("record store: %w", err)
		}
		a.DB = db
		return dao.NewNoteRepository(dao.New(db)), nil
	case RecordStoreRedis:
		rc := cfg.GetRedisConfig()
		client, err := dao.NewRedisClient(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("record store: %w", err)
		}
		a.Redis = client
		return dao.NewNoteRedisRepository(client, rc.KeyPrefix), nil
	}
	return nil, fmt.Errorf("record store: unsupported type %q", cfg.RecordStore.Type)
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get sql.DB: %w", err))
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			a.logger.Info("Database connection closed")
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		} else {
			a.logger.Info("Redis connection closed")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close: %v", errs)
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// BlobProxied 图片是否通过本服务的 /api/blob 路由访问
func (a *App) BlobProxied() bool {
	return !storage.CloudStorageTypeMap[a.config.BlobStore.Type]
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 等待后台操作完成后关闭记录存储连接
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 返回关闭信号通道（用于监听关闭事件）
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
