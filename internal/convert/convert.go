// Package convert turns legacy BIFF (.xls) workbooks into .xlsx so the
// extraction pipeline only ever deals with one format. Cell values carry
// over; styling does not, so checklist templates are expected as .xlsx.
package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yamitzky/xlrd-go/xlrd"
)

// ErrNotLegacyWorkbook is returned when the input file is not a BIFF
// workbook.
var ErrNotLegacyWorkbook = errors.New("not a legacy .xls workbook")

// File converts one .xls workbook. An empty outputPath places the .xlsx
// next to the input with the extension swapped. Returns the output path.
func File(inputPath, outputPath string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("open %s: %w", inputPath, err)
	}
	format, err := xlrd.InspectFormat(inputPath, nil)
	if err != nil {
		return "", fmt.Errorf("inspect %s: %w", inputPath, err)
	}
	if format != "xls" {
		return "", fmt.Errorf("%w: %s", ErrNotLegacyWorkbook, inputPath)
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".xlsx"
	}

	book, err := xlrd.OpenWorkbook(inputPath, &xlrd.OpenWorkbookOptions{FormattingInfo: true})
	if err != nil {
		return "", fmt.Errorf("read %s: %w", inputPath, err)
	}

	out := excelize.NewFile()
	defer out.Close()

	for index, name := range book.SheetNames() {
		if index == 0 {
			if err := out.SetSheetName(out.GetSheetName(0), name); err != nil {
				return "", err
			}
		} else if _, err := out.NewSheet(name); err != nil {
			return "", err
		}
		sheet, err := book.SheetByIndex(index)
		if err != nil {
			return "", err
		}
		if err := copySheet(out, book, sheet, name); err != nil {
			return "", err
		}
	}

	if err := out.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// Dir converts every .xls file under inputDir, mirroring the directory
// layout below outputDir. An empty outputDir converts in place. Returns
// the paths of the workbooks written.
func Dir(inputDir, outputDir string) ([]string, error) {
	if outputDir == "" {
		outputDir = inputDir
	}
	var written []string
	err := filepath.WalkDir(inputDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xls") {
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".xlsx")
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := File(path, target)
		if err != nil {
			return err
		}
		written = append(written, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

func copySheet(out *excelize.File, book *xlrd.Book, sheet *xlrd.Sheet, name string) error {
	for rowx := 0; rowx < sheet.NRows; rowx++ {
		for colx := 0; colx < sheet.NCols; colx++ {
			value := cellValue(book, sheet, rowx, colx)
			if value == nil {
				continue
			}
			coord, err := excelize.CoordinatesToCellName(colx+1, rowx+1)
			if err != nil {
				return err
			}
			if err := out.SetCellValue(name, coord, value); err != nil {
				return fmt.Errorf("write %s!%s: %w", name, coord, err)
			}
		}
	}
	return nil
}

func cellValue(book *xlrd.Book, sheet *xlrd.Sheet, rowx, colx int) any {
	switch sheet.CellType(rowx, colx) {
	case xlrd.XL_CELL_TEXT:
		if text, ok := sheet.CellValue(rowx, colx).(string); ok && text != "" {
			return text
		}
		return nil
	case xlrd.XL_CELL_NUMBER:
		val, ok := sheet.CellValue(rowx, colx).(float64)
		if !ok {
			return nil
		}
		if isDateCell(book, sheet.CellXFIndex(rowx, colx)) {
			if t, err := xlrd.XldateAsDatetime(val, book.Datemode); err == nil {
				return t
			}
		}
		return val
	case xlrd.XL_CELL_BOOLEAN:
		switch v := sheet.CellValue(rowx, colx).(type) {
		case bool:
			return v
		case int:
			return v != 0
		}
		return nil
	case xlrd.XL_CELL_ERROR:
		if code, ok := sheet.CellValue(rowx, colx).(byte); ok {
			if text, ok := xlrd.ErrorTextFromCode[code]; ok {
				return text
			}
		}
		return nil
	default:
		return nil
	}
}

func isDateCell(book *xlrd.Book, xfIndex int) bool {
	if xfIndex < 0 || xfIndex >= len(book.XFList) {
		return false
	}
	key := book.XFList[xfIndex].FormatKey
	switch key {
	case 14, 15, 16, 17, 18, 19, 20, 21, 22, 27, 30, 36, 50, 57, 58:
		return true
	}
	if book.FormatMap == nil {
		return false
	}
	format := book.FormatMap[key]
	if format == nil || format.FormatString == "" {
		return false
	}
	return xlrd.IsDateFormatString(book, format.FormatString)
}
