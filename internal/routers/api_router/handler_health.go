package api_router

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/app"
	"github.com/haierkeys/pin-notes-service/internal/dto"
	pkgapp "github.com/haierkeys/pin-notes-service/pkg/app"
	"github.com/haierkeys/pin-notes-service/pkg/code"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/process"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// Check 健康检查接口
// @Summary 健康检查
// @Description 检查服务状态；database 记录存储会额外检查连接
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.HealthDTO}
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	cfg := h.App.Config()
	health := dto.HealthDTO{
		Status:      "healthy",
		Uptime:      time.Since(h.App.StartTime).Round(time.Second).String(),
		RecordStore: cfg.RecordStore.Type,
		BlobStore:   cfg.BlobStore.Type,
		Notes:       len(h.App.NoteService.Notes()),
		Process:     processStats(c.Request.Context()),
	}

	if err := h.ping(c); err != nil {
		h.logError(c.Request.Context(), "HealthHandler.Check", err)
		health.Status = "unhealthy"
		pkgapp.NewResponse(c).ToResponse(code.Failed.WithData(health))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(health))
}

// ping 检查自托管记录存储的连接，GraphQL 记录存储不做探测
func (h *HealthHandler) ping(c *gin.Context) error {
	ctx := c.Request.Context()
	if h.App.DB != nil {
		sqlDB, err := h.App.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	if h.App.Redis != nil {
		return h.App.Redis.Ping(ctx).Err()
	}
	return nil
}

// processStats 采集当前进程和主机信息，单项失败时保留零值
func processStats(ctx context.Context) dto.ProcessDTO {
	stats := dto.ProcessDTO{
		PID:        int32(os.Getpid()),
		Goroutines: runtime.NumGoroutine(),
	}

	if p, err := process.NewProcessWithContext(ctx, stats.PID); err == nil {
		if mem, err := p.MemoryInfoWithContext(ctx); err == nil {
			stats.MemoryRSS = mem.RSS
		}
		stats.MemoryPercent, _ = p.MemoryPercentWithContext(ctx)
		stats.CPUPercent, _ = p.CPUPercentWithContext(ctx)
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		stats.Hostname = info.Hostname
		stats.Platform = info.Platform + " " + info.PlatformVersion
		stats.HostUptime = info.Uptime
	}
	return stats
}
