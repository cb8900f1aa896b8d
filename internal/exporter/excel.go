package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"chunkdash/pkg/contracts/domain"
)

// DefaultSheetName is the sheet used when none is given
const DefaultSheetName = "Sheet1"

const maxSheetNameLen = 31

// Sheet is one worksheet of a workbook
type Sheet struct {
	Name    string
	Headers []string
	Rows    []domain.Row
}

// WriteExcel writes a workbook with one worksheet per sheet, in order.
func WriteExcel(w io.Writer, sheets ...Sheet) (err error) {
	if len(sheets) == 0 {
		sheets = []Sheet{{Name: DefaultSheetName}}
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	used := make(map[string]bool, len(sheets))
	for i, s := range sheets {
		name := uniqueSheetName(SanitizeSheetName(s.Name), used)
		if i == 0 && name != DefaultSheetName {
			if err := f.SetSheetName(DefaultSheetName, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if i > 0 {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %s: %w", name, err)
			}
		}
		if err := writeSheet(f, name, s); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, s Sheet) error {
	headers := s.Headers
	if len(headers) == 0 {
		headers = Headers(s.Rows)
	}
	if len(headers) == 0 {
		return nil
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("sheet %s header: %w", name, err)
	}

	for r, row := range s.Rows {
		values := make([]interface{}, len(headers))
		for i, h := range headers {
			v, _ := row.Get(h)
			values[i] = excelValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, r+1, err)
		}
	}
	return nil
}

// SanitizeSheetName makes name a legal worksheet name
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, "'")
	if name == "" {
		return DefaultSheetName
	}
	if r := []rune(name); len(r) > maxSheetNameLen {
		name = string(r[:maxSheetNameLen])
	}
	return name
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetNameLen {
			base = base[:maxSheetNameLen-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
