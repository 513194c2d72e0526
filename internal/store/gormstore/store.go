// Package gormstore is the SQLite persistence layer. All repositories share
// one gorm handle opened here.
package gormstore

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/natowatch/natowatch/internal/domain"
)

// Open opens (or creates) the SQLite database at dsn and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", dsn, err)
	}

	if err := db.AutoMigrate(
		&domain.Opportunity{},
		&domain.Feedback{},
		&domain.RoadmapItem{},
		&domain.Subscriber{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}
