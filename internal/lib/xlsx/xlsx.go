// Package xlsx собирает отчёты в книги Excel.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentType: MIME-тип книги .xlsx.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet: лист с заголовком и строками.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Build записывает листы в новую книгу и возвращает её содержимое.
func Build(sheets ...Sheet) ([]byte, error) {
	const op = "xlsx.Build"
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", op, errors.New("no sheets"))
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	defaultSheet := f.GetSheetName(0)
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sh.Name); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := writeSheet(f, sh); err != nil {
			return nil, fmt.Errorf("%s: sheet %q: %w", op, sh.Name, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sh Sheet) error {
	header := make([]any, len(sh.Header))
	for i, h := range sh.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sh.Name, "A1", &header); err != nil {
		return err
	}
	for i, row := range sh.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.Name, cell, &row); err != nil {
			return err
		}
	}
	if len(sh.Header) > 0 {
		last, err := excelize.ColumnNumberToName(len(sh.Header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sh.Name, "A", last, 20); err != nil {
			return err
		}
	}
	return nil
}
