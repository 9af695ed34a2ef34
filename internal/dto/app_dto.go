package dto

// VersionDTO version information for API response
// VersionDTO 版本信息 API 响应对象
type VersionDTO struct {
	Version   string `json:"version"`   // Current version // 当前版本
	GitTag    string `json:"gitTag"`    // Git tag // Git 标签
	BuildTime string `json:"buildTime"` // Build time // 构建时间
}

// HealthDTO health check response
// HealthDTO 健康检查响应
type HealthDTO struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	RecordStore string `json:"recordStore"`
	BlobStore   string `json:"blobStore"`
	Notes       int    `json:"notes"`
	// Process 进程与主机信息，采集失败的字段为零值
	Process ProcessDTO `json:"process"`
}

// ProcessDTO process and host statistics
// ProcessDTO 进程与主机统计
type ProcessDTO struct {
	PID           int32   `json:"pid"`
	Goroutines    int     `json:"goroutines"`
	MemoryRSS     uint64  `json:"memoryRss"`
	MemoryPercent float32 `json:"memoryPercent"`
	CPUPercent    float64 `json:"cpuPercent"`
	Hostname      string  `json:"hostname"`
	Platform      string  `json:"platform"`
	HostUptime    uint64  `json:"hostUptime"`
}
