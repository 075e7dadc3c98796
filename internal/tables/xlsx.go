package tables

import (
	"bytes"
	"fmt"
	"math"

	"github.com/omarshaarawi/draftbot/internal/schema"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// encodeXLSX writes one sheet per table with the field names as a header row.
func encodeXLSX(s *schema.Schema, d schema.Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for _, t := range s.Tables() {
		if _, err := f.NewSheet(t.Name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", t.Name, err)
		}
		fields := t.Fields()
		header := make([]any, len(fields))
		for i, field := range fields {
			header[i] = field
		}
		if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
			return nil, fmt.Errorf("failed to write header of %q: %w", t.Name, err)
		}
		for r, row := range d[t.Name] {
			values := make([]any, len(fields))
			for i, field := range fields {
				v := row[field]
				if num, ok := v.(float64); ok && math.IsInf(num, 0) {
					v = infText(num)
				}
				values[i] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d of %q: %w", r+1, t.Name, err)
			}
		}
	}
	if len(s.Tables()) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return nil, fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render XLSX: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeXLSX(s *schema.Schema, raw []byte) (schema.Data, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}

	d := make(schema.Data)
	for _, t := range s.Tables() {
		if !sheets[t.Name] {
			d[t.Name] = nil
			continue
		}
		rows, err := f.GetRows(t.Name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", t.Name, err)
		}
		if len(rows) == 0 {
			d[t.Name] = nil
			continue
		}
		d[t.Name] = rowsFromRecords(rows[0], rows[1:])
	}
	return d, nil
}
