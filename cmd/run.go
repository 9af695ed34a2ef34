package cmd

import (
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/haierkeys/pin-notes-service/pkg/fileurl"
	"github.com/haierkeys/pin-notes-service/pkg/util"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

// 按顺序查找的配置文件
var configCandidates = []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"}

// findConfig 返回第一个存在的配置文件，都不存在时返回空字符串
func findConfig() string {
	for _, f := range configCandidates {
		if fileurl.IsExist(f) {
			return f
		}
	}
	return ""
}

// createDefaultConfig 写出内嵌的默认配置，密钥和管理员密码随机生成
// 返回管理员的初始密码
func createDefaultConfig(path string) (string, error) {
	password := util.GetRandomString(16)
	hash, err := util.GeneratePasswordHash(password)
	if err != nil {
		return "", err
	}

	content := strings.NewReplacer(
		"pin-notes-Auth-Token", util.GetRandomString(32),
		"pin-notes-Blob-Link", util.GetRandomString(32),
		"pin-notes-Admin-Password-Hash", hash,
	).Replace(configDefault)

	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", err
	}
	return password, nil
}

// watchConfig 配置文件写入后关闭当前服务并按新配置重建
func watchConfig(runEnv *runFlags, current *atomic.Pointer[Server]) {
	w := watcher.New()

	// 每个监听周期至多接收 1 个事件，只关心写入
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				old := current.Load()
				old.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))

				// 先等旧服务释放端口
				old.sc.SendCloseSignal(nil)
				if err := old.sc.WaitClosed(); err != nil {
					old.logger.Error("shutdown before reload failed", zap.Error(err))
				}

				s, err := NewServer(runEnv)
				if err != nil {
					bootstrapLogger.Error("service reload err", zap.Error(err))
					continue
				}
				current.Store(s)

			case err := <-w.Error:
				bootstrapLogger.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				bootstrapLogger.Info("config watcher closed")
				return
			}
		}
	}()

	if err := w.Add(runEnv.config); err != nil {
		bootstrapLogger.Error("config watcher file error", zap.Error(err))
		return
	}
	if err := w.Start(time.Second * 5); err != nil {
		bootstrapLogger.Error("config watcher start error", zap.Error(err))
	}
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
					return
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if len(runEnv.config) <= 0 {
				runEnv.config = findConfig()
			}
			if len(runEnv.config) <= 0 {
				bootstrapLogger.Warn("config file not found, creating default config")
				runEnv.config = "config/config.yaml"

				password, err := createDefaultConfig(runEnv.config)
				if err != nil {
					bootstrapLogger.Error("config file auto create error", zap.Error(err))
					return
				}
				bootstrapLogger.Warn("config file auto create successfully, sign in as admin with the generated password",
					zap.String("path", runEnv.config),
					zap.String("password", password))
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			var current atomic.Pointer[Server]
			current.Store(s)
			go watchConfig(runEnv, &current)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			s = current.Load()
			s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			s.sc.SendCloseSignal(nil)

			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}
			_ = s.logger.Sync()
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
