package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// sheetRow is one spreadsheet row mirrored into MySQL. Cells hold the row as
// a JSON array in schema order; ID keeps append order.
type sheetRow struct {
	ID        uint      `gorm:"primaryKey"`
	Sheet     string    `gorm:"size:32;index"`
	Cells     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (sheetRow) TableName() string {
	return "sheet_rows"
}

// OpenMySQL connects to MySQL and migrates the mirror table.
func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&sheetRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

// SQLStore keeps the clinic tables in MySQL with the same row model as the
// spreadsheet, for sites that cannot reach Google.
type SQLStore struct {
	DB *gorm.DB
}

// NewSQLStore creates a SQLStore over an open connection.
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{DB: db}
}

// ReadTable returns every row of table in append order. The header is the
// table schema.
func (s *SQLStore) ReadTable(ctx context.Context, table Table) (Sheet, error) {
	columns, err := Columns(table)
	if err != nil {
		return Sheet{}, err
	}
	var rows []sheetRow
	if err := s.DB.WithContext(ctx).Where("sheet = ?", string(table)).Order("id").Find(&rows).Error; err != nil {
		return Sheet{}, fmt.Errorf("failed to read %s: %w", table, err)
	}
	out := Sheet{Header: columns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		var cells []string
		if err := json.Unmarshal([]byte(r.Cells), &cells); err != nil {
			return Sheet{}, fmt.Errorf("corrupt row %d of %s: %w", r.ID, table, err)
		}
		out.Rows = append(out.Rows, cells)
	}
	return padRows(out), nil
}

// AppendRow inserts row at the end of table.
func (s *SQLStore) AppendRow(ctx context.Context, table Table, row []string) error {
	if _, err := Columns(table); err != nil {
		return err
	}
	cells, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	rec := sheetRow{Sheet: string(table), Cells: string(cells)}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to append to %s: %w", table, err)
	}
	return nil
}
