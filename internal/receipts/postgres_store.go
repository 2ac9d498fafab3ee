package receipts

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// postgresStore persists receipts through GORM
type postgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to Postgres, migrates the receipts table,
// and returns a store backed by it
func NewPostgresStore(dsn string) (Store, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to receipts database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping receipts database: %w", err)
	}

	if err := db.AutoMigrate(&Receipt{}); err != nil {
		return nil, fmt.Errorf("failed to migrate receipts table: %w", err)
	}

	return &postgresStore{db: db}, nil
}

// Save inserts the receipt
func (s *postgresStore) Save(ctx context.Context, receipt *Receipt) error {
	if err := s.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}
