package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

// ValidError 单个字段的校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 用于 code.WithDetails
func (v ValidErrors) ErrorsToString() string {
	return v.Error()
}

// MapsToString 以 字段名 -> 错误信息 的形式返回，用于 code.WithData
func (v ValidErrors) MapsToString() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		out[err.Key] = err.Message
	}
	return out
}

// BindAndValid 绑定请求参数并校验，错误信息按请求语言翻译
// BindAndValid binds the request into v and returns translated validation errors.
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err == nil {
		return true, nil
	}

	verrs, ok := err.(val.ValidationErrors)
	if !ok {
		errs = append(errs, &ValidError{Key: "request", Message: err.Error()})
		return false, errs
	}

	trans, _ := c.Value("trans").(ut.Translator)
	if trans == nil {
		for _, fe := range verrs {
			errs = append(errs, &ValidError{Key: fe.Field(), Message: fe.Error()})
		}
		return false, errs
	}

	for key, value := range verrs.Translate(trans) {
		// 去掉结构体前缀，只保留字段名
		if i := strings.LastIndex(key, "."); i != -1 {
			key = key[i+1:]
		}
		errs = append(errs, &ValidError{Key: key, Message: value})
	}
	return false, errs
}
