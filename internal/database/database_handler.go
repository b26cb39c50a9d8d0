package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"whitegate/internal/config"
	"whitegate/internal/domain"
	"whitegate/internal/support"
)

var (
	DB *gorm.DB
)

type Config struct {
	ExistingDB   *gorm.DB
	Dialector    gorm.Dialector
	Logger       logger.Interface
	AutoMigrate  bool
	Migrations   []any
	SeedDefaults bool
}

type Option func(*Config)

func SetupDB(opts ...Option) (*gorm.DB, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.ExistingDB == nil && cfg.Dialector == nil {
		cfg.Dialector = defaultDialector()
	}

	switch {
	case cfg.ExistingDB != nil:
		DB = cfg.ExistingDB
	case cfg.Dialector != nil:
		gormCfg := &gorm.Config{}
		if cfg.Logger != nil {
			gormCfg.Logger = cfg.Logger
		}
		db, err := gorm.Open(cfg.Dialector, gormCfg)
		if err != nil {
			return nil, fmt.Errorf("database: open connection: %w", err)
		}
		DB = db
		configureSQLite(db)
	default:
		return nil, fmt.Errorf("database: no dialector or existing connection provided")
	}

	if DB == nil {
		return nil, fmt.Errorf("database: connection was not configured")
	}

	if cfg.AutoMigrate && len(cfg.Migrations) > 0 {
		if err := DB.AutoMigrate(cfg.Migrations...); err != nil {
			return nil, fmt.Errorf("database: auto migrate: %w", err)
		}
		log.Info("Database migration completed.")
	}

	if cfg.SeedDefaults {
		if err := seedDefaults(DB); err != nil {
			return nil, fmt.Errorf("database: seed defaults: %w", err)
		}
	}

	return DB, nil
}

func defaultConfig() Config {
	return Config{
		Logger:       silentLogger(),
		AutoMigrate:  true,
		Migrations:   defaultMigrations(),
		SeedDefaults: true,
	}
}

func defaultDialector() gorm.Dialector {
	path := config.GetConfig().Paths.Database
	if path == "" {
		path = "data/whitegate.db"
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		log.Error("database: create data directory", "error", err)
	}

	return sqlite.Open(path)
}

func silentLogger() logger.Interface {
	return logger.New(
		log.Default(),
		logger.Config{LogLevel: logger.Silent},
	)
}

func defaultMigrations() []any {
	return []any{
		domain.User{},
		domain.WhitelistEntry{},
		domain.OperationLog{},
		domain.ConnectionEvent{},
		domain.BlockedIPStat{},
		domain.LogCursor{},
	}
}

func WithExistingDB(db *gorm.DB) Option {
	return func(cfg *Config) {
		cfg.ExistingDB = db
	}
}

func WithDialector(d gorm.Dialector) Option {
	return func(cfg *Config) {
		cfg.Dialector = d
	}
}

func WithLogger(l logger.Interface) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

func WithAutoMigrate(enabled bool) Option {
	return func(cfg *Config) {
		cfg.AutoMigrate = enabled
	}
}

func WithMigrations(models ...any) Option {
	return func(cfg *Config) {
		if len(models) == 0 {
			cfg.Migrations = nil
			return
		}
		cfg.Migrations = append([]any(nil), models...)
	}
}

func WithSeedDefaults(enabled bool) Option {
	return func(cfg *Config) {
		cfg.SeedDefaults = enabled
	}
}

// configureSQLite applies pragmas for a single-file database shared by
// request handlers and the refresh job.
func configureSQLite(db *gorm.DB) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error("database: get sql.DB", "error", err)
		return
	}

	// SQLite tolerates one writer; a single connection sidesteps busy errors.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			log.Warn("database: apply pragma", "pragma", pragma, "error", err)
		}
	}
}

func seedDefaults(db *gorm.DB) error {
	return ensureAdminUser(db)
}

// ensureAdminUser creates the default admin account on first start. The
// password comes from ADMIN_PASSWORD so fresh deployments never ship a
// hardcoded credential.
func ensureAdminUser(db *gorm.DB) error {
	if !db.Migrator().HasTable(&domain.User{}) {
		return nil
	}

	var count int64
	if err := db.Model(&domain.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := support.GetEnv("ADMIN_PASSWORD", "admin123")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := domain.User{
		Username: "admin",
		Password: string(hashed),
		Active:   true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info("Default admin user created from environment password")
	return nil
}
