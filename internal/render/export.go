package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// CSV выгрузка таблицы; UTF-8 с BOM, чтобы Excel правильно открыл кириллицу.
func CSV(w io.Writer, t Table) error {
	if _, err := w.Write([]byte("\ufeff")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// XLSX таблица на один лист.
func XLSX(sheetName string, t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetName != "" && sheetName != sheet {
		if err := f.SetSheetName(sheet, sheetName); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
		sheet = sheetName
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, r := range t.Rows {
		excelRow := make([]interface{}, len(r))
		for i, c := range r {
			excelRow[i] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName имя выгрузки с отметкой времени: assets_20260102_150405.xlsx.
func FileName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), ext)
}

// Workbook сведения о файле импорта, прочитанные до отправки на сервер.
type Workbook struct {
	Sheet   string
	Headers []string
	Rows    int
}

// InspectWorkbook проверяет, что файл читается как .xlsx и содержит строки данных.
func InspectWorkbook(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not an xlsx file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file has no data rows")
	}
	return &Workbook{Sheet: sheet, Headers: rows[0], Rows: len(rows) - 1}, nil
}
