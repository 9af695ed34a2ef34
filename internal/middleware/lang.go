package middleware

import (
	"strings"

	"github.com/haierkeys/pin-notes-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// TranslatorKey 校验错误翻译器在 gin.Context 中的键，pkg/app.BindAndValid 读取
const TranslatorKey = "trans"

// requestLang 依次读取 ?lang=、lang 请求头和 Accept-Language 的第一个语言
func requestLang(c *gin.Context) string {
	lang, ok := c.GetQuery("lang")
	if !ok || lang == "" {
		lang = c.GetHeader("lang")
	}
	if lang == "" {
		lang = c.GetHeader("Accept-Language")
		if i := strings.IndexAny(lang, ",;"); i != -1 {
			lang = lang[:i]
		}
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "-", "_"))
}

// LangWithTranslator 按请求语言选择校验翻译器和返回码文案，只支持 en 与 zh
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := requestLang(c)

		locale, msgLang := "en", "en"
		if strings.HasPrefix(lang, "zh") {
			locale, msgLang = "zh", "zh_cn"
		}

		trans, _ := uni.GetTranslator(locale)
		c.Set(TranslatorKey, trans)
		_ = code.SetGlobalDefaultLang(msgLang)

		c.Next()
	}
}
