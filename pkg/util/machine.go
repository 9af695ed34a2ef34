package util

import (
	"os"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var (
	machineID     string
	machineIDOnce sync.Once
)

// GetMachineID returns a stable identifier for this host, mixed into signing
// keys so tokens issued on one machine do not verify on another.
// GetMachineID 获取当前机器的唯一标识符，失败时回退到主机名
func GetMachineID() string {
	machineIDOnce.Do(func() {
		if id, err := machineid.ProtectedID("pin-notes"); err == nil && id != "" {
			machineID = id
			return
		}
		if content, err := os.ReadFile("/sys/class/dmi/id/board_serial"); err == nil {
			if id := strings.TrimSpace(string(content)); id != "" {
				machineID = id
				return
			}
		}
		if host, err := os.Hostname(); err == nil {
			machineID = host
		}
	})
	return machineID
}
