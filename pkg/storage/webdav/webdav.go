package webdav

import (
	"github.com/studio-b12/gowebdav"
)

// Config 结构体用于存储 WebDAV 连接信息。
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV 结构体表示 WebDAV 客户端。访问链接由服务自身签发并代理读取。
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

// NewClient 创建一个新的 WebDAV 客户端实例。
func NewClient(conf *Config) (*WebDAV, error) {
	return &WebDAV{
		Client: gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password),
		Config: conf,
	}, nil
}
