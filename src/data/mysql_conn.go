package data

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// settingsDSNParams are forced onto every settings DSN unless the caller
// already set them.
var settingsDSNParams = [][2]string{
	{"parseTime", "true"},
	{"charset", "utf8mb4"},
	{"collation", "utf8mb4_unicode_ci"},
	{"timeout", "5s"},
}

// ConnectMySQL opens the settings database. gorm warnings go to the given
// logger. The settings table is read once at startup so the pool stays tiny.
func ConnectMySQL(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn = withSettingsParams(dsn)

	gl := gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("settings db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetConnMaxLifetime(time.Minute)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping settings db: %w", err)
	}
	return db, nil
}

// withSettingsParams fills in missing DSN parameters. A caller supplied
// charset keeps the server's default collation for it.
func withSettingsParams(dsn string) string {
	base, query, _ := strings.Cut(dsn, "?")
	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	customCharset := values.Has("charset")
	for _, p := range settingsDSNParams {
		if p[0] == "collation" && customCharset {
			continue
		}
		if !values.Has(p[0]) {
			values.Set(p[0], p[1])
		}
	}
	return base + "?" + values.Encode()
}
