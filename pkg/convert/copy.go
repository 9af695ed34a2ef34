// Package convert 结构体之间的字段复制
package convert

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// StructAssign 把 src 中与 dst 同名的字段复制到 dst，dst 必须是指针
// 切片之间同样适用，例如 []*domain.Note -> []*dto.NoteDTO
func StructAssign(src any, dst any) error {
	if err := copier.Copy(dst, src); err != nil {
		return errors.Wrap(err, "convert: struct assign")
	}
	return nil
}
