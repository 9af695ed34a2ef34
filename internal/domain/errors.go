package domain

import (
	"errors"
	"fmt"
)

// 存储层错误分类，使用 errors.Is 判断
var (
	ErrRemoteQuery    = errors.New("remote query failed")
	ErrRemoteMutation = errors.New("remote mutation failed")
	ErrBlobNotFound   = errors.New("blob not found")
	ErrBlobRead       = errors.New("blob read failed")
	ErrBlobWrite      = errors.New("blob write failed")
	ErrNoteNotFound   = errors.New("note not found")
)

// 会话错误
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("session is invalid or expired")
)

// 输入校验错误
var (
	ErrNoteNameRequired        = errors.New("note name is required")
	ErrNoteNameInvalid         = errors.New("note name must not contain slashes or control characters")
	ErrNoteDescriptionRequired = errors.New("note description is required")
	ErrUploadTooLarge          = errors.New("upload exceeds the size limit")
)

// StoreError 记录存储或对象存储操作失败
// StoreError unwraps to both its Kind and its cause, so callers can match
// either the taxonomy entry or the underlying driver error.
type StoreError struct {
	Kind error
	Op   string
	Key  string
	Err  error
}

func (e *StoreError) Error() string {
	msg := e.Kind.Error() + ": " + e.Op
	if e.Key != "" {
		msg += fmt.Sprintf(" %q", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewStoreError 构造一个 StoreError
func NewStoreError(kind error, op, key string, err error) error {
	return &StoreError{Kind: kind, Op: op, Key: key, Err: err}
}
