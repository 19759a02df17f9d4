// internal/pkg/database/mysql.go
package database

import (
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/pkg/bootstrap"
)

// DSN 根据配置生成 MySQL 连接串。金额列使用 decimal，时间统一按 UTC 解析。
func DSN(cfg bootstrap.MySQLConfig) string {
	c := gomysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Addr
	c.DBName = cfg.Database
	c.ParseTime = true
	c.Loc = time.UTC
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// Open 建立 GORM 连接并配置连接池；models 非空且开启 AutoMigrate 时自动建表
func Open(cfg bootstrap.MySQLConfig, models ...any) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(DSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// 唯一键冲突翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open mysql %s/%s", cfg.Addr, cfg.Database)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.AutoMigrate && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, errors.Wrap(err, "auto migrate")
		}
	}
	zlog.Info().Str("addr", cfg.Addr).Str("database", cfg.Database).Msg("✅ Successfully connected to MySQL.")
	return db, nil
}
