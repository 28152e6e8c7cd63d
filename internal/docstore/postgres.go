package docstore

import (
	"bytes"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRow is the relational shape of one record. The version column is
// the optimistic concurrency token.
type documentRow struct {
	Name      string `gorm:"primaryKey"`
	Value     []byte
	Version   uint64 `gorm:"not null"`
	UpdatedAt time.Time
}

func (documentRow) TableName() string { return "documents" }

// PostgresStore keeps records in a single documents table through GORM.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Read(ctx context.Context, name string) (*Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).First(&row, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Document{Value: row.Value, Version: row.Version}, nil
}

func (s *PostgresStore) Write(ctx context.Context, name string, value []byte) (uint64, error) {
	row := documentRow{Name: name, Value: value, Version: 1}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":   value,
			"version": gorm.Expr("documents.version + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}
	doc, err := s.Read(ctx, name)
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}

func (s *PostgresStore) CompareAndSwap(ctx context.Context, name string, value []byte, expect uint64) (uint64, error) {
	if expect == 0 {
		row := documentRow{Name: name, Value: value, Version: 1}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
		if err != nil {
			return 0, err
		}
		// DoNothing reports no error on conflict; verify we own version 1.
		doc, err := s.Read(ctx, name)
		if err != nil {
			return 0, err
		}
		if doc.Version != 1 || !bytes.Equal(doc.Value, value) {
			return 0, ErrVersionMismatch
		}
		return 1, nil
	}

	res := s.db.WithContext(ctx).Model(&documentRow{}).
		Where("name = ? AND version = ?", name, expect).
		Updates(map[string]interface{}{
			"value":   value,
			"version": expect + 1,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrVersionMismatch
	}
	return expect + 1, nil
}

func (s *PostgresStore) Remove(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Delete(&documentRow{}, "name = ?", name).Error
}

func (s *PostgresStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&documentRow{}).
		Where("name LIKE ?", prefix+"%").
		Order("name").
		Pluck("name", &names).Error
	return names, err
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
