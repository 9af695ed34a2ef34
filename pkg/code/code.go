package code

import (
	"fmt"
	"net/http"
)

// Code 接口返回码
// Code is the result code carried by every API response.
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}
var sussCodes = map[int]string{}

func NewError(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.en
	return &Code{code: code, status: false, Lang: l}
}

func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.en
	return &Code{code: code, status: true, Lang: l}
}

// Clone 创建一个新的 Code 副本，避免并发请求互相覆盖 data/details
// Clone returns a fresh copy so concurrent requests never share data or details.
func (e *Code) Clone() *Code {
	return &Code{
		code:    e.code,
		status:  e.status,
		Lang:    e.Lang,
		details: []string{},
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.details = e.details
	c.haveDetails = e.haveDetails
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.data = e.data
	c.haveData = e.haveData
	c.haveDetails = true
	c.details = append(c.details, details...)
	return c
}

func (e *Code) StatusCode() int {
	return http.StatusOK
}
