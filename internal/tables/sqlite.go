package tables

import (
	"fmt"
	"strings"

	"github.com/omarshaarawi/draftbot/internal/schema"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(path string) (*gorm.DB, func(), error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, func() { sqlDB.Close() }, nil
}

// writeSQLite replaces each table in the file with the rows in d. Columns are
// left untyped so numbers and text keep their own storage class.
func writeSQLite(path string, s *schema.Schema, d schema.Data) error {
	db, closeDB, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer closeDB()

	return db.Transaction(func(tx *gorm.DB) error {
		for _, t := range s.Tables() {
			fields := t.Fields()
			columns := make([]string, len(fields))
			marks := make([]string, len(fields))
			for i, f := range fields {
				columns[i] = quote(f)
				marks[i] = "?"
			}

			if err := tx.Exec("DROP TABLE IF EXISTS " + quote(t.Name)).Error; err != nil {
				return fmt.Errorf("dropping %s: %w", t.Name, err)
			}
			create := fmt.Sprintf("CREATE TABLE %s (%s)", quote(t.Name), strings.Join(columns, ", "))
			if err := tx.Exec(create).Error; err != nil {
				return fmt.Errorf("creating %s: %w", t.Name, err)
			}

			insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
				quote(t.Name), strings.Join(columns, ", "), strings.Join(marks, ", "))
			for _, row := range d[t.Name] {
				values := make([]any, len(fields))
				for i, f := range fields {
					values[i] = row[f]
				}
				if err := tx.Exec(insert, values...).Error; err != nil {
					return fmt.Errorf("inserting into %s: %w", t.Name, err)
				}
			}
		}
		return nil
	})
}

func readSQLite(path string, s *schema.Schema) (schema.Data, error) {
	db, closeDB, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	d := make(schema.Data)
	for _, t := range s.Tables() {
		if !db.Migrator().HasTable(t.Name) {
			d[t.Name] = nil
			continue
		}
		rows, err := readSQLiteTable(db, t.Name)
		if err != nil {
			return nil, err
		}
		d[t.Name] = rows
	}
	return d, nil
}

func readSQLiteTable(db *gorm.DB, table string) ([]schema.Row, error) {
	rows, err := db.Raw("SELECT * FROM " + quote(table) + " ORDER BY rowid").Rows()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}

	var out []schema.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("reading %s: %w", table, err)
		}
		row := make(schema.Row, len(columns))
		for i, c := range columns {
			if values[i] == nil {
				continue
			}
			row[c] = normalize(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	return out, nil
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
