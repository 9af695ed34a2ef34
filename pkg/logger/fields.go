package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUser 登录用户名字段
	FieldUser = "user"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldNoteName 笔记名称字段，同时也是图片对象键
	FieldNoteName = "noteName"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldSize 文件大小字段
	FieldSize = "size"

	// FieldBackend 存储后端字段
	FieldBackend = "backend"

	// FieldBucket 存储桶名称字段
	FieldBucket = "bucket"

	// FieldFileKey 文件键字段
	FieldFileKey = "fileKey"
)
