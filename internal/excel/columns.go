package excel

import (
	"sort"

	"github.com/xuri/excelize/v2"
)

// headerScanRows bounds the region examined for input header labels.
const headerScanRows = 10

// LocateInputColumns scans the first rows of a worksheet and returns the
// 1-based indices of columns whose header text exactly matches one of the
// recognised labels. Column 1 is reserved for lead text and never
// qualifies. The result is deduplicated and ascending, and depends only on
// the worksheet content, so repeated calls return identical slices.
func LocateInputColumns(f *excelize.File, sheet string, labels []string) ([]int, error) {
	recognized := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		recognized[label] = struct{}{}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	for rowIdx, row := range rows {
		if rowIdx >= headerScanRows {
			break
		}
		for colIdx, value := range row {
			column := colIdx + 1
			if column == 1 {
				continue
			}
			if _, ok := recognized[value]; ok {
				seen[column] = struct{}{}
			}
		}
	}

	columns := make([]int, 0, len(seen))
	for column := range seen {
		columns = append(columns, column)
	}
	sort.Ints(columns)
	return columns, nil
}
