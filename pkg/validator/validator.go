// Package validator 请求参数校验器，替换 gin 默认校验器并注册自定义规则和翻译
package validator

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// TagBlobKey 笔记名称同时作为图片对象键，不能包含路径分隔符或控制字符
const TagBlobKey = "blobkey"

// CustomValidator 实现 binding.StructValidator
type CustomValidator struct {
	once     sync.Once
	validate *validator.Validate
}

var _ binding.StructValidator = (*CustomValidator)(nil)

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct 校验结构体、结构体指针以及它们的切片
func (v *CustomValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}

	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		if value.Elem().Kind() != reflect.Struct {
			return v.ValidateStruct(value.Elem().Interface())
		}
		return v.validateStruct(obj)
	case reflect.Struct:
		return v.validateStruct(obj)
	case reflect.Slice, reflect.Array:
		var errs binding.SliceValidationError
		for i := 0; i < value.Len(); i++ {
			if err := v.ValidateStruct(value.Index(i).Interface()); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) == 0 {
			return nil
		}
		return errs
	}
	return nil
}

func (v *CustomValidator) validateStruct(obj any) error {
	v.lazyinit()
	return v.validate.Struct(obj)
}

// Engine 返回底层 *validator.Validate
func (v *CustomValidator) Engine() any {
	v.lazyinit()
	return v.validate
}

func (v *CustomValidator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName("binding")
	})
}

// jsonTagName 错误信息中使用 json 字段名
func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// IsBlobKey 判断字符串能否作为图片对象键
func IsBlobKey(s string) bool {
	s = strings.TrimSpace(s)
	if s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`) && !strings.ContainsFunc(s, unicode.IsControl)
}

// RegisterCustom 注册自定义校验规则
func RegisterCustom(validate *validator.Validate) error {
	return validate.RegisterValidation(TagBlobKey, func(fl validator.FieldLevel) bool {
		return IsBlobKey(fl.Field().String())
	})
}

var customMessages = map[string]map[string]string{
	"en": {TagBlobKey: "{0} must not contain slashes or control characters"},
	"zh": {TagBlobKey: "{0}不能包含斜杠或控制字符"},
}

func registerCustomTranslations(validate *validator.Validate, locale string, trans ut.Translator) error {
	for tag, text := range customMessages[locale] {
		tag, text := tag, text
		err := validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error { return ut.Add(tag, text, true) },
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, err := ut.T(tag, fe.Field())
				if err != nil {
					return fe.Error()
				}
				return msg
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// Init 安装校验器并返回中英文翻译器，LangWithTranslator 中间件按请求语言选择
func Init() (*ut.UniversalTranslator, error) {
	customValidator := NewCustomValidator()
	binding.Validator = customValidator

	validate := customValidator.Engine().(*validator.Validate)
	validate.RegisterTagNameFunc(jsonTagName)
	if err := RegisterCustom(validate); err != nil {
		return nil, err
	}

	uni := ut.New(en.New(), en.New(), zh.New())
	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}
	if err := registerCustomTranslations(validate, "zh", zhTran); err != nil {
		return nil, err
	}
	if err := registerCustomTranslations(validate, "en", enTran); err != nil {
		return nil, err
	}
	return uni, nil
}
