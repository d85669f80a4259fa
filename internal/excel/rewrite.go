package excel

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ims/internal/models"
)

// resetStartRow is the first row the reset pass may clear. Rows above it
// hold static header and label content that survives every rewrite.
const resetStartRow = 9

// Engine writes recorded task input back into the source workbook and
// saves the result under a filename derived from the new selection.
type Engine struct {
	outputDir string
}

// NewEngine builds a rewrite engine saving into outputDir.
func NewEngine(outputDir string) *Engine {
	return &Engine{outputDir: outputDir}
}

// Rewrite opens the source workbook, applies the reset pass when the
// period changed, writes each task's stamp and status pair, and saves the
// workbook under the derived filename. Nothing is persisted until the
// final save succeeds; any earlier failure leaves the source untouched.
// It returns the saved file's path.
func (e *Engine) Rewrite(sourcePath string, sheets []models.Sheet, details models.Details) (string, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSourceDocumentMissing, sourcePath)
	}
	identity, err := ParseIdentity(sourcePath)
	if err != nil {
		return "", err
	}
	mode := TransitionMode(identity.Period, details.Period)

	f, err := excelize.OpenFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	worksheets := f.GetSheetList()
	indexes := make([]*MergeIndex, len(worksheets))
	for i, name := range worksheets {
		if indexes[i], err = NewMergeIndex(f, name); err != nil {
			return "", err
		}
	}

	if mode == NewPeriod {
		if err := resetInputRows(f, worksheets, indexes, sheets); err != nil {
			return "", err
		}
	}

	stamp := details.Stamp()
	for i, sheet := range sheets {
		if i >= len(worksheets) {
			break
		}
		worksheet, index := worksheets[i], indexes[i]
		for _, category := range sheet.Categories {
			for _, task := range category.Tasks {
				if task.IsComment() {
					continue
				}
				status := task.Status()
				if status == "" {
					status = models.StatusOK
				}
				targets, err := allocateSlots(f, worksheet, index, task, mode)
				if err != nil {
					return "", err
				}
				for j, value := range []string{stamp, status} {
					if j >= len(targets) {
						break
					}
					if err := f.SetCellValue(worksheet, targets[j], value); err != nil {
						return "", fmt.Errorf("write %s!%s: %w", worksheet, targets[j], err)
					}
				}
			}
		}
	}

	output := Identity{Base: identity.Base, Day: details.Day, Period: details.Period, Year: details.Year}
	outputPath := filepath.Join(e.outputDir, output.Filename())
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return outputPath, nil
}

// allocateSlots picks the two write targets for a task, already resolved
// to merge anchors. Same-period mode scans for the next empty pair and
// falls back to the first declared pair when fewer than two empty slots
// remain; new-period mode always targets the first declared pair.
func allocateSlots(f *excelize.File, worksheet string, index *MergeIndex, task models.Task, mode WriteMode) ([]string, error) {
	coords := task.SortedCoords()
	declared := coords
	if len(declared) > 2 {
		declared = declared[:2]
	}
	if mode == NewPeriod {
		return resolveAll(index, declared)
	}
	empty := make([]string, 0, 2)
	for _, coord := range coords {
		anchor, err := index.Resolve(coord)
		if err != nil {
			return nil, err
		}
		value, err := f.GetCellValue(worksheet, anchor)
		if err != nil {
			return nil, err
		}
		if value == "" {
			empty = append(empty, anchor)
			if len(empty) == 2 {
				return empty, nil
			}
		}
	}
	if len(coords) > 0 {
		log.Printf("task %q: fewer than two empty slots, overwriting the first pair", task.Name)
	}
	return resolveAll(index, declared)
}

func resolveAll(index *MergeIndex, coords []string) ([]string, error) {
	anchors := make([]string, 0, len(coords))
	for _, coord := range coords {
		anchor, err := index.Resolve(coord)
		if err != nil {
			return nil, err
		}
		anchors = append(anchors, anchor)
	}
	return anchors, nil
}

// resetInputRows clears historical input data before a new-period write.
// The column set observed on the document's first task stands in for the
// whole workbook; column A and rows above resetStartRow are never touched,
// and interior cells of merged regions are skipped.
func resetInputRows(f *excelize.File, worksheets []string, indexes []*MergeIndex, sheets []models.Sheet) error {
	columns := representativeColumns(sheets)
	if len(columns) == 0 {
		return nil
	}
	for i, worksheet := range worksheets {
		rows, err := f.GetRows(worksheet)
		if err != nil {
			return err
		}
		for row := resetStartRow; row <= len(rows); row++ {
			for _, column := range columns {
				if indexes[i].Interior(column, row) {
					continue
				}
				coord, err := excelize.CoordinatesToCellName(column, row)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(worksheet, coord, ""); err != nil {
					return fmt.Errorf("clear %s!%s: %w", worksheet, coord, err)
				}
			}
		}
	}
	return nil
}

func representativeColumns(sheets []models.Sheet) []int {
	for _, sheet := range sheets {
		for _, category := range sheet.Categories {
			for _, task := range category.Tasks {
				columns := make([]int, 0, len(task.Inputs))
				for _, coord := range task.SortedCoords() {
					col, _, err := excelize.CellNameToCoordinates(coord)
					if err != nil || col == 1 {
						continue
					}
					columns = append(columns, col)
				}
				return columns
			}
		}
	}
	return nil
}
