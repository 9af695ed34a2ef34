package api_router

import (
	"expvar"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// Expvar 导出运行时指标 (expvar)，可用 ?key=memstats,cmdline 只输出指定项
func Expvar(c *gin.Context) {
	var keys map[string]bool
	if q := c.Query("key"); q != "" {
		keys = make(map[string]bool)
		for _, k := range strings.Split(q, ",") {
			keys[strings.TrimSpace(k)] = true
		}
	}

	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	fmt.Fprintf(c.Writer, "{\n")
	first := true
	expvar.Do(func(kv expvar.KeyValue) {
		if keys != nil && !keys[kv.Key] {
			return
		}
		if !first {
			fmt.Fprintf(c.Writer, ",\n")
		}
		first = false
		// expvar.Var.String 已经是 JSON
		fmt.Fprintf(c.Writer, "%q: %s", kv.Key, kv.Value.String())
	})
	fmt.Fprintf(c.Writer, "\n}\n")
}
