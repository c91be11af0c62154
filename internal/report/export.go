package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportJSON writes data as indented JSON, creating the parent directory.
func ExportJSON(filename string, data any) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// TimestampedFilename returns baseDir/name_YYYYMMDD_HHMMSS.ext.
func TimestampedFilename(baseDir, name, ext string) string {
	t := time.Now().Format("20060102_150405")
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s.%s", name, t, ext))
}

// ExportXLSX writes one sheet per table.
func ExportXLSX(filename string, tables []Table) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}

		header := make([]any, len(t.Header))
		for j, h := range t.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
			return fmt.Errorf("sheet %s: %w", t.Name, err)
		}
		for j, row := range t.Rows {
			if err := f.SetSheetRow(t.Name, "A"+fmt.Sprint(j+2), &row); err != nil {
				return fmt.Errorf("sheet %s: %w", t.Name, err)
			}
		}
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Export writes the report as JSON and its flat tables as an XLSX workbook
// under dir, returning both paths.
func Export(dir string, r *Report) (jsonPath, xlsxPath string, err error) {
	jsonPath = TimestampedFilename(dir, "northwind_report", "json")
	if err := ExportJSON(jsonPath, r); err != nil {
		return "", "", err
	}
	xlsxPath = TimestampedFilename(dir, "northwind_report", "xlsx")
	if err := ExportXLSX(xlsxPath, r.Tables()); err != nil {
		return "", "", err
	}
	return jsonPath, xlsxPath, nil
}
