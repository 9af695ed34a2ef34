package code

// 成功码
var (
	Success        = NewSuss(200, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate  = NewSuss(201, lang{en: "Created successfully", zh_cn: "创建成功"})
	SuccessDelete  = NewSuss(202, lang{en: "Deleted successfully", zh_cn: "删除成功"})
	SuccessSignIn  = NewSuss(203, lang{en: "Signed in", zh_cn: "登录成功"})
	SuccessSignOut = NewSuss(204, lang{en: "Signed out", zh_cn: "已退出登录"})
)

// 通用错误码
var (
	Failed               = NewError(400, lang{en: "Failed", zh_cn: "失败"})
	ErrorInvalidParams   = NewError(401, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorNotFound        = NewError(404, lang{en: "Not found", zh_cn: "资源不存在"})
	ErrorTooManyRequests = NewError(429, lang{en: "Too many requests", zh_cn: "请求过于频繁"})
	ErrorServerInternal  = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorRequestTimeout  = NewError(504, lang{en: "Request timed out", zh_cn: "请求超时"})
)

// 会话错误码
var (
	ErrorNotUserAuthToken        = NewError(1001, lang{en: "Not signed in", zh_cn: "未登录"})
	ErrorInvalidUserAuthToken    = NewError(1002, lang{en: "Session is invalid or expired", zh_cn: "会话无效或已过期"})
	ErrorUserLoginPasswordFailed = NewError(1003, lang{en: "Incorrect username or password", zh_cn: "用户名或密码错误"})
	ErrorTokenGenerate           = NewError(1004, lang{en: "Failed to issue session token", zh_cn: "会话令牌生成失败"})
	ErrorInvalidBlobToken        = NewError(1005, lang{en: "Blob link is invalid or expired", zh_cn: "文件链接无效或已过期"})
)

// 笔记错误码
var (
	ErrorRemoteQuery      = NewError(2001, lang{en: "Failed to query notes", zh_cn: "笔记查询失败"})
	ErrorRemoteMutation   = NewError(2002, lang{en: "Failed to update notes", zh_cn: "笔记更新失败"})
	ErrorBlobNotFound     = NewError(2003, lang{en: "Image not found", zh_cn: "图片不存在"})
	ErrorBlobWrite        = NewError(2004, lang{en: "Failed to write image", zh_cn: "图片写入失败"})
	ErrorNoteNotFound     = NewError(2005, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteNameRequired = NewError(2006, lang{en: "Name and description are required", zh_cn: "名称和描述不能为空"})
	ErrorUploadTooLarge   = NewError(2007, lang{en: "Image is too large", zh_cn: "图片过大"})
	ErrorBlobNotProxied   = NewError(2008, lang{en: "Blob store does not serve files through this service", zh_cn: "当前存储不支持通过本服务访问文件"})
	ErrorBlobRead         = NewError(2009, lang{en: "Failed to read image", zh_cn: "图片读取失败"})
	ErrorNoteNameInvalid  = NewError(2010, lang{en: "Name must not contain slashes or control characters", zh_cn: "名称不能包含斜杠或控制字符"})
)
