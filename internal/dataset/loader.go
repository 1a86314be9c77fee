package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Encodings reported in Table.Encoding.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
	EncodingXLSX   = "xlsx"
)

// Table is a raw tabular corpus: the first row is the header, every data row is
// padded to the header width.
type Table struct {
	Path     string
	Encoding string
	Header   []string
	Rows     [][]string
}

// Load reads a .csv or .xlsx corpus. CSV bytes are decoded as UTF-8 and fall
// back to Latin-1 when they are not valid UTF-8.
func Load(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatasetNotFound, path)
		}
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadXLSX(path)
	default:
		return loadCSV(path)
	}
}

func loadCSV(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	text, encoding := decode(raw)
	records, err := parseCSV(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnexpectedFormat, path, err)
	}
	return newTable(path, encoding, records)
}

// decode returns raw as a string, converting from Latin-1 when it is not valid UTF-8.
// Latin-1 maps every byte to a rune, so decoding cannot fail.
func decode(raw []byte) (string, string) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return string(raw), EncodingUTF8
	}
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return string(out), EncodingLatin1
}

func parseCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func loadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", ErrUnexpectedFormat, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook %s has no sheets", ErrUnexpectedFormat, path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	return newTable(path, EncodingXLSX, rows)
}

func newTable(path, encoding string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrUnexpectedFormat, path)
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := &Table{Path: path, Encoding: encoding, Header: header}
	for n, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: %s row %d has %d fields, header has %d",
				ErrUnexpectedFormat, path, n+2, len(rec), len(header))
		}
		row := make([]string, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
