package fileurl

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil || os.IsExist(err)
}

// IsDir 判断所给路径是否为文件夹
func IsDir(p string) bool {
	s, err := os.Stat(p)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// CreatePath creates the parent directory of dst
// CreatePath 创建文件所在目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// PathSuffixCheckAdd checks path suffix, adds it if not exists
// PathSuffixCheckAdd 检查路径后缀，如果没有则添加
func PathSuffixCheckAdd(p string, suffix string) string {
	if !strings.HasSuffix(p, suffix) {
		p = p + suffix
	}
	return p
}

// ObjectKey joins the configured custom prefix and an object key with "/".
// Keys are note names, so they are cleaned but otherwise kept verbatim.
// ObjectKey 拼接自定义前缀与对象键
func ObjectKey(customPath, fileKey string) string {
	fileKey = strings.TrimLeft(path.Clean("/"+fileKey), "/")
	customPath = strings.Trim(customPath, "/")
	if customPath == "" {
		return fileKey
	}
	return customPath + "/" + fileKey
}
