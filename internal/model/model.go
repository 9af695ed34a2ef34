package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 根据模型名称自动迁移表结构
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Note":
		return db.AutoMigrate(&Note{})
	}
	return nil
}

// AutoMigrateAll 迁移全部表
func AutoMigrateAll(db *gorm.DB) error {
	for _, key := range []string{"Note"} {
		if err := AutoMigrate(db, key); err != nil {
			return err
		}
	}
	return nil
}
