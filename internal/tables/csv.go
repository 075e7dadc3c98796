package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/omarshaarawi/draftbot/internal/schema"
)

func readCSVDir(dir string, s *schema.Schema) (schema.Data, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUnsupportedFormat, dir)
	}

	d := make(schema.Data)
	for _, t := range s.Tables() {
		rows, err := readCSVFile(filepath.Join(dir, t.Name+".csv"))
		if errors.Is(err, fs.ErrNotExist) {
			d[t.Name] = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		d[t.Name] = rows
	}
	return d, nil
}

func readCSVFile(path string) ([]schema.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return rowsFromRecords(records[0], records[1:]), nil
}

func writeCSVDir(dir string, s *schema.Schema, d schema.Data) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, t := range s.Tables() {
		if err := writeCSVFile(filepath.Join(dir, t.Name+".csv"), t.Fields(), d[t.Name]); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile(path string, fields []string, rows []schema.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(fields); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(recordOf(row, fields)); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
