package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resumebuilder/internal/config"
)

// InitDatabase opens the PostgreSQL connection described by cfg and returns a GORM handle.
func InitDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap db: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Migrate runs AutoMigrate for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&ResumeProject{},
		&ResumeSection{},
		&ResumeItem{},
		&ResumeTemplate{},
		&Bookmark{},
		&Faq{},
		&ExampleItem{},
	)
}

// EnsureIndexes creates constraints AutoMigrate cannot express. The partial
// unique index keeps "exactly one default project per owner" consistent even
// when two set-default requests race.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_resume_projects_owner_default
			ON resume_projects (user_id) WHERE is_default`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_resume_templates_default
			ON resume_templates (is_default) WHERE is_default`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}
