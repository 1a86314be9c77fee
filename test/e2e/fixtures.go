package e2e

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Header is the column header written by the CSV and XLSX fixtures.
var Header = []string{"ClassId", "Title", "Description"}

// CSVBytes renders items as CSV. With header false the rows are written as-is
// and the first data row is read back as the header.
func CSVBytes(items []NewsItem, header bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if header {
		if err := w.Write(Header); err != nil {
			return nil, err
		}
	}
	for _, it := range items {
		if err := w.Write([]string{it.ClassID, it.Title, it.Description}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Latin1 encodes UTF-8 data as ISO-8859-1.
func Latin1(data []byte) ([]byte, error) {
	return charmap.ISO8859_1.NewEncoder().Bytes(data)
}

// WriteZip writes an archive at path holding a single entry name with data.
func WriteZip(path, name string, data []byte) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// WriteXLSX writes items with a header row to the first sheet of a workbook at path.
func WriteXLSX(path string, items []NewsItem) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, Header)
	for _, it := range items {
		rows = append(rows, []string{it.ClassID, it.Title, it.Description})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return f.SaveAs(path)
}
