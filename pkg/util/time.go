package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a duration that may also use a day suffix ("7d")
// or a bare number of seconds ("30").
// ParseDuration 解析时长，额外支持天后缀（"7d"）与纯数字秒数（"30"）
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if daysStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	// 如果是纯数字，默认为秒
	if _, err := strconv.Atoi(s); err == nil {
		s += "s"
	}
	return time.ParseDuration(s)
}

// MustParseDuration is ParseDuration with a fallback for empty or invalid input.
func MustParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
