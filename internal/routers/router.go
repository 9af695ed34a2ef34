package routers

import (
	"html/template"
	"io/fs"

	"github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/middleware"
	"github.com/haierkeys/pin-notes-service/internal/routers/api_router"
	"github.com/haierkeys/pin-notes-service/internal/routers/web_router"
	"github.com/haierkeys/pin-notes-service/internal/routers/websocket_router"
	pkgapp "github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
)

// signInLimiter 登录接口按 "METHOD /path" 限流，其他接口不限
func signInLimiter(cfg *app.AppConfig) limiter.Face {
	capacity := int64(cfg.Security.SignInLimitCapacity)
	interval := cfg.GetSignInLimitInterval()
	return limiter.NewMethodLimiter().AddBuckets(
		limiter.BucketRule{Key: "POST /api/session", FillInterval: interval, Capacity: capacity, Quantum: 1},
		limiter.BucketRule{Key: "POST " + web_router.SignInPath, FillInterval: interval, Capacity: capacity, Quantum: 1},
	)
}

// NewRouter 创建公开路由：JSON API、网页看板和 WebSocket 推送
// webFiles 中需要包含 web/templates 下的看板模板
func NewRouter(webFiles fs.FS, appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()
	lg := appContainer.Logger()

	var wss = pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:   true,
			Recovery:           gws.Recovery,                         // 开启异常恢复
			PermessageDeflate:  gws.PermessageDeflate{Enabled: true}, // 开启压缩
			ReadMaxPayloadSize: 1024 * 4,                             // 客户端只发送控制消息
		},
		Logger: lg,
	})
	noteWSHandler := websocket_router.NewNoteWSHandler(appContainer, wss)

	tmpl := template.Must(web_router.ParseTemplates(webFiles))
	boardHandler := web_router.NewBoardHandler(appContainer, tmpl)

	rateLimiter := middleware.RateLimiter(signInLimiter(cfg))
	timeout := middleware.ContextTimeout(cfg.GetContextTimeout())

	r := gin.New()
	r.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
	r.Use(middleware.AccessLogWithLogger(lg))
	r.Use(middleware.RecoveryWithLogger(lg))

	// 网页看板
	web := r.Group("/")
	{
		web.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		web.Use(timeout)

		web.GET(web_router.SignInPath, boardHandler.SignInPage)
		web.POST(web_router.SignInPath, rateLimiter, boardHandler.SignIn)
		web.POST("/signout", boardHandler.SignOut)

		auth := web.Group("/", middleware.SessionAuthRedirect(appContainer.SessionService, web_router.SignInPath))
		auth.GET("/", boardHandler.Board)
		auth.POST("/notes", boardHandler.Create)
		auth.POST("/notes/:id/delete", boardHandler.Delete)
	}

	// 创建 Handlers（注入 App Container）
	sessionHandler := api_router.NewSessionHandler(appContainer)
	noteHandler := api_router.NewNoteHandler(appContainer)
	blobHandler := api_router.NewBlobHandler(appContainer)
	healthHandler := api_router.NewHealthHandler(appContainer)
	versionHandler := api_router.NewVersionHandler(appContainer)

	api := r.Group("/api")
	{
		api.Use(middleware.LangWithTranslator(uni))

		// WebSocket 连接不受请求超时限制
		api.GET("/notes/watch", middleware.SessionAuth(appContainer.SessionService), noteWSHandler.Watch)

		api.Use(timeout)

		api.GET("/version", versionHandler.ServerVersion)
		api.GET("/health", healthHandler.Check)
		api.GET("/blob", blobHandler.Serve) // app.BlobRoute
		api.POST("/session", rateLimiter, sessionHandler.SignIn)

		authed := api.Group("", middleware.SessionAuth(appContainer.SessionService))
		authed.GET("/session", sessionHandler.Current)
		authed.DELETE("/session", sessionHandler.SignOut)
		authed.GET("/notes", noteHandler.List)
		authed.POST("/notes", noteHandler.Create)
		authed.DELETE("/notes/:id", noteHandler.Delete)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
