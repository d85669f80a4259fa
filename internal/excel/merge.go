package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type mergedRegion struct {
	minCol, minRow int
	maxCol, maxRow int
	anchor         string
}

// MergeIndex is an immutable index of a worksheet's merged regions,
// computed once at load time. Every write must resolve its target through
// the index so that writes aimed at a non-anchor member of a region land
// on the region's top-left cell instead of vanishing.
type MergeIndex struct {
	regions []mergedRegion
}

// NewMergeIndex reads the merged-region list for one worksheet.
func NewMergeIndex(f *excelize.File, sheet string) (*MergeIndex, error) {
	cells, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read merged regions: %w", err)
	}
	index := &MergeIndex{regions: make([]mergedRegion, 0, len(cells))}
	for _, cell := range cells {
		startCol, startRow, err := excelize.CellNameToCoordinates(cell.GetStartAxis())
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMergeResolution, cell.GetStartAxis())
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(cell.GetEndAxis())
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMergeResolution, cell.GetEndAxis())
		}
		index.regions = append(index.regions, mergedRegion{
			minCol: startCol, minRow: startRow,
			maxCol: endCol, maxRow: endRow,
			anchor: cell.GetStartAxis(),
		})
	}
	return index, nil
}

// Resolve maps a coordinate to its writable anchor: the top-left cell of
// the containing merged region, or the coordinate itself when unmerged.
func (m *MergeIndex) Resolve(coord string) (string, error) {
	col, row, err := excelize.CellNameToCoordinates(coord)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMergeResolution, coord)
	}
	for _, region := range m.regions {
		if col >= region.minCol && col <= region.maxCol && row >= region.minRow && row <= region.maxRow {
			return region.anchor, nil
		}
	}
	return coord, nil
}

// Interior reports whether the cell is a non-anchor member of a merged
// region. Interior cells are skipped by the reset pass since they cannot
// hold values of their own.
func (m *MergeIndex) Interior(col, row int) bool {
	for _, region := range m.regions {
		if col >= region.minCol && col <= region.maxCol && row >= region.minRow && row <= region.maxRow {
			return !(col == region.minCol && row == region.minRow)
		}
	}
	return false
}
