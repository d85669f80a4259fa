package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"ims/internal/models"
)

// Warning records a row that was dropped during extraction because it had
// no structural home, e.g. a task header appearing before any category.
type Warning struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
	Text  string `json:"text"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s row %d: %s", w.Sheet, w.Row, w.Text)
}

// Parser turns styled worksheets into the sheet/category/task tree.
type Parser struct {
	classifier *Classifier
	labels     []string
}

// NewParser builds a parser for the given input header labels and category
// highlight colors.
func NewParser(labels, categoryFills []string) *Parser {
	return &Parser{
		classifier: NewClassifier(categoryFills),
		labels:     labels,
	}
}

// ParseWorkbook processes every worksheet in order. Sheet names are
// positional so the rewrite pass can map records back to worksheets by
// ordinal. A worksheet that yields tasks but no input columns aborts the
// whole extraction; no partial tree is returned.
func (p *Parser) ParseWorkbook(f *excelize.File) ([]models.Sheet, []Warning, error) {
	var sheets []models.Sheet
	var warnings []Warning
	for index, name := range f.GetSheetList() {
		sheet, sheetWarnings, err := p.parseWorksheet(f, name, index+1)
		if err != nil {
			return nil, nil, err
		}
		sheets = append(sheets, sheet)
		warnings = append(warnings, sheetWarnings...)
	}
	return sheets, warnings, nil
}

func (p *Parser) parseWorksheet(f *excelize.File, worksheet string, position int) (models.Sheet, []Warning, error) {
	sheet := models.Sheet{Name: fmt.Sprintf("Sheet %d", position)}

	// Input columns are discovered once per worksheet, before any row is
	// classified, so every task row reads the same coordinate set.
	columns, err := LocateInputColumns(f, worksheet, p.labels)
	if err != nil {
		return models.Sheet{}, nil, err
	}

	rows, err := f.GetRows(worksheet)
	if err != nil {
		return models.Sheet{}, nil, err
	}

	var warnings []Warning
	var current *models.Category
	sawTask := false

	for rowIdx, row := range rows {
		rowNum := rowIdx + 1
		lead := ""
		if len(row) > 0 {
			lead = strings.TrimSpace(row[0])
		}
		bold, fill, err := p.leadStyle(f, worksheet, rowNum)
		if err != nil {
			return models.Sheet{}, nil, err
		}

		switch p.classifier.Classify(lead, fill, bold) {
		case RoleCategory:
			if current != nil {
				sheet.Categories = append(sheet.Categories, *current)
			}
			current = &models.Category{Name: lead}
		case RoleTask:
			sawTask = true
			if current == nil {
				warnings = append(warnings, Warning{Sheet: sheet.Name, Row: rowNum, Text: "task before any category"})
				continue
			}
			task, err := p.buildTask(f, worksheet, lead, rowNum, columns)
			if err != nil {
				return models.Sheet{}, nil, err
			}
			current.Tasks = append(current.Tasks, task)
		case RoleDescription:
			if current == nil || len(current.Tasks) == 0 {
				warnings = append(warnings, Warning{Sheet: sheet.Name, Row: rowNum, Text: "description before any task"})
				continue
			}
			task := &current.Tasks[len(current.Tasks)-1]
			if task.Description == "" {
				task.Description = lead
			} else {
				task.Description += " " + lead
			}
		}
	}

	if current != nil {
		sheet.Categories = append(sheet.Categories, *current)
	}
	if sawTask && len(columns) == 0 {
		return models.Sheet{}, nil, fmt.Errorf("%w: worksheet %s", ErrMissingColumns, worksheet)
	}
	return sheet, warnings, nil
}

func (p *Parser) buildTask(f *excelize.File, worksheet, name string, rowNum int, columns []int) (models.Task, error) {
	task := models.Task{Name: name, Inputs: make(map[string]string, len(columns))}
	for _, column := range columns {
		coord, err := excelize.CoordinatesToCellName(column, rowNum)
		if err != nil {
			return models.Task{}, err
		}
		value, err := f.GetCellValue(worksheet, coord)
		if err != nil {
			return models.Task{}, err
		}
		if value == "" {
			value = models.Sentinel
		}
		task.Inputs[coord] = value
	}
	return task, nil
}

func (p *Parser) leadStyle(f *excelize.File, worksheet string, rowNum int) (bool, string, error) {
	coord, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return false, "", err
	}
	styleID, err := f.GetCellStyle(worksheet, coord)
	if err != nil {
		return false, "", err
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		return false, "", err
	}
	bold := style.Font != nil && style.Font.Bold
	fill := ""
	if len(style.Fill.Color) > 0 {
		fill = style.Fill.Color[0]
	}
	return bold, fill, nil
}
