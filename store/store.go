package store

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crhntr/inspect"
	"github.com/crhntr/inspect/expression"
)

type CellRecord struct {
	ID      int64  `gorm:"primaryKey"`
	Sheet   string `gorm:"index:idx_sheet_address,unique"`
	Address string `gorm:"index:idx_sheet_address,unique"`
	Formula string
}

// Store keeps sheet formulas in a sqlite database. Values are not stored;
// a loaded sheet must be recalculated.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&CellRecord{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (store *Store) Close() error {
	sqlDB, err := store.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save replaces every stored formula of the named sheet.
func (store *Store) Save(ctx context.Context, name string, sheet *inspect.Sheet) error {
	addresses := sheet.Addresses()
	records := make([]CellRecord, 0, len(addresses))
	for _, address := range addresses {
		records = append(records, CellRecord{
			Sheet:   name,
			Address: address.String(),
			Formula: sheet.Formula(address),
		})
	}
	return store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("`sheet` = ?", name).Delete(&CellRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
}

func (store *Store) Load(ctx context.Context, name string) (*inspect.Sheet, error) {
	var records []CellRecord
	if err := store.db.WithContext(ctx).
		Where("`sheet` = ?", name).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	sheet := inspect.NewSheet()
	for _, record := range records {
		address, err := expression.ParseAddress(record.Address)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		sheet.SetFormula(address, record.Formula)
	}
	return sheet, nil
}

func (store *Store) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := store.db.WithContext(ctx).
		Model(&CellRecord{}).
		Distinct().
		Order("sheet").
		Pluck("sheet", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (store *Store) Delete(ctx context.Context, name string) error {
	return store.db.WithContext(ctx).Where("`sheet` = ?", name).Delete(&CellRecord{}).Error
}
