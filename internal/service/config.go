// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// 图片缺失时的处理策略
const (
	// MissingImageFail 任意图片解析失败时整个列表失败
	MissingImageFail = "fail"
	// MissingImageOmit 图片对象不存在时不显示图片，其他错误仍然失败
	MissingImageOmit = "omit"
)

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	App  AppServiceConfig  // Note board config // 笔记看板配置
	Auth AuthServiceConfig // Sign in config // 登录配置
}

// AppServiceConfig app service configuration
// AppServiceConfig 应用服务配置
type AppServiceConfig struct {
	ImageResolveConcurrency int    // Max concurrent image resolutions in List // 列表时并发解析图片的上限
	MissingImagePolicy      string // fail or omit // 图片缺失策略
	DeleteRollback          bool   // Re-insert the note when a remote delete fails // 远端删除失败时恢复本地笔记
	UploadMaxSize           int64  // Max upload size in bytes, 0 means unlimited // 上传大小上限（字节），0 表示不限制
}

// AuthServiceConfig sign in configuration
// AuthServiceConfig 登录配置
type AuthServiceConfig struct {
	Users map[string]string // username -> bcrypt hash // 用户名到 bcrypt 哈希
}

func (c *AppServiceConfig) concurrency() int {
	if c == nil || c.ImageResolveConcurrency <= 0 {
		return 8
	}
	return c.ImageResolveConcurrency
}

func (c *AppServiceConfig) omitMissingImages() bool {
	return c != nil && c.MissingImagePolicy == MissingImageOmit
}
