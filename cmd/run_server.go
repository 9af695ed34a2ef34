package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	internalApp "github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/routers"
	"github.com/haierkeys/pin-notes-service/internal/service"
	"github.com/haierkeys/pin-notes-service/internal/task"
	"github.com/haierkeys/pin-notes-service/pkg/logger"
	"github.com/haierkeys/pin-notes-service/pkg/safe_close"
	"github.com/haierkeys/pin-notes-service/pkg/storage"
	"github.com/haierkeys/pin-notes-service/pkg/validator"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// defaultSecretKeys 需要提示修改的默认密钥
var defaultSecretKeys = []string{
	"pin-notes-Auth-Token",
	"pin-notes-Blob-Link",
	"",
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// sharedMetrics 指标只向默认注册表注册一次，配置热重载后的新服务继续使用
var sharedMetrics = sync.OnceValue(func() *service.Metrics {
	return service.NewMetrics(prometheus.DefaultRegisterer)
})

type Server struct {
	logger            *zap.Logger             // 日志对象
	config            *internalApp.AppConfig  // 应用配置
	ut                *ut.UniversalTranslator // 翻译器
	httpServer        *http.Server
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App // App Container
}

// checkSecurityConfig 检查安全配置，如果使用默认密钥则输出警告
func checkSecurityConfig(cfg *internalApp.AppConfig, lg *zap.Logger) {
	var fields []string
	for _, key := range defaultSecretKeys {
		if cfg.Security.AuthTokenKey == key {
			fields = append(fields, "security.auth-token-key")
		}
		if cfg.Security.BlobLinkKey == key {
			fields = append(fields, "security.blob-link-key")
		}
	}
	if len(fields) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("⚠️  SECURITY WARNING: Using default secret key!")
	fmt.Println()
	fmt.Printf("Please modify %s in config.yaml\n", strings.Join(fields, ", "))
	fmt.Println("Generate a secure key with:")
	fmt.Println("  openssl rand -base64 32")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	if lg != nil {
		lg.Warn("Using default secret key", zap.Strings("fields", fields))
	}
}

func NewServer(runEnv *runFlags) (*Server, error) {

	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 命令行参数优先
	if len(runEnv.runMode) > 0 {
		appConfig.Server.RunMode = runEnv.runMode
	}
	if len(runEnv.port) > 0 {
		appConfig.Server.HttpPort = ":" + strings.TrimPrefix(runEnv.port, ":")
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configRealpath, err)
	}

	if len(appConfig.Server.RunMode) > 0 {
		gin.SetMode(appConfig.Server.RunMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	lg, err := logger.NewLogger(logger.Config{
		Level:      appConfig.Log.Level,
		File:       appConfig.Log.File,
		Production: appConfig.Log.Production,
	})
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}
	s.logger = lg

	checkSecurityConfig(appConfig, s.logger)

	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), appConfig.GetContextTimeout())
	defer cancel()
	app, err := internalApp.NewApp(ctx, appConfig, s.logger, internalApp.WithMetrics(sharedMetrics()))
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app

	uni, err := validator.Init()
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("initValidator: %w", err)
	}
	s.ut = uni

	if err := initScheduler(s); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("initScheduler: %w", err)
	}

	banner := `
    ____  _          _   __      __
   / __ \(_)___     / | / /___  / /____  _____
  / /_/ / / __ \   /  |/ / __ \/ __/ _ \/ ___/
 / ____/ / / / /  / /|  / /_/ / /_/  __(__  )
/_/   /_/_/ /_/  /_/ |_/\____/\__/\___/____/  `
	s.logger.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner, internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))

	s.logger.Warn("config loaded", zap.String("path", configRealpath),
		zap.String("recordStore", appConfig.RecordStore.Type),
		zap.String(logger.FieldBackend, appConfig.BlobStore.Type))

	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", httpAddr))
		s.httpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewRouter(webFiles, s.app, s.ut),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve("api service", s.httpServer)
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", httpAddr))
		s.privateHttpServer = &http.Server{
			Addr:           httpAddr,
			Handler:        routers.NewPrivateRouterWithLogger(appConfig.Server.RunMode, s.logger, nil),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve("private api service", s.privateHttpServer)
	}

	// App Container 的优雅关闭，等待后台任务和 WebSocket 连接结束
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal

		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
		} else {
			s.logger.Info("App container shutdown gracefully")
		}
	})

	return s, nil
}

// serve 在受管理的协程中启动 HTTP 服务，监听失败时关闭整个服务
func (s *Server) serve(name string, srv *http.Server) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			s.logger.Error(name+" err", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}

func initScheduler(s *Server) error {
	manager := task.NewManager(s.logger, s.sc, s.app)

	// 注册所有任务(业务层控制)
	if err := manager.RegisterTasks(); err != nil {
		return err
	}

	manager.Start()
	return nil
}

// initStorageWithConfig 创建日志、本地数据库和本地图片目录
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	dirs := []string{filepath.Dir(cfg.Log.File)}
	if cfg.RecordStore.Type == internalApp.RecordStoreDatabase && cfg.RecordStore.Database.Type == "sqlite" {
		dirs = append(dirs, filepath.Dir(cfg.RecordStore.Database.Path))
	}
	if cfg.BlobStore.Type == storage.LOCAL {
		dirs = append(dirs, cfg.BlobStore.SavePath)
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetApp 获取 App Container
func (s *Server) GetApp() *internalApp.App {
	return s.app
}
