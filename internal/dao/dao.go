// Package dao 实现数据访问层
package dao

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/pin-notes-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type            string // sqlite / mysql / postgres
	Path            string // sqlite 文件路径
	UserName        string
	Password        string
	Host            string
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// Dao 数据库访问对象
type Dao struct {
	Db *gorm.DB
}

func New(db *gorm.DB) *Dao {
	return &Dao{Db: db}
}

// NewDBEngineWithConfig 创建数据库连接（使用注入的配置）
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(c)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if c.RunMode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀，`Note` 的表名应该是 `pin_note`
			SingularTable: true,          // 使用单数表名
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "dao: open database")
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "dao: database handle")
	}

	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if d, err := time.ParseDuration(c.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(d)
	} else {
		sqlDB.SetConnMaxLifetime(10 * time.Minute)
	}
	if d, err := time.ParseDuration(c.ConnMaxIdleTime); err == nil {
		sqlDB.SetConnMaxIdleTime(d)
	}

	if c.AutoMigrate {
		if err := model.AutoMigrateAll(db); err != nil {
			return nil, errors.Wrap(err, "dao: auto migrate")
		}
	}

	if lg != nil {
		lg.Info("database connected", zap.String("type", c.Type))
	}
	return db, nil
}

func dialectorFor(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		)), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=Local",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
		)), nil
	case "sqlite", "":
		if dir := filepath.Dir(c.Path); dir != "" {
			if err := os.MkdirAll(dir, 0754); err != nil {
				return nil, errors.Wrap(err, "dao: create sqlite dir")
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, errors.Errorf("dao: unsupported database type %q", c.Type)
}
