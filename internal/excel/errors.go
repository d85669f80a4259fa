package excel

import "errors"

var (
	// ErrMissingColumns is returned when a worksheet contains tasks but no
	// recognised input header could be located in its scan region.
	ErrMissingColumns = errors.New("no input columns located")
	// ErrMergeResolution indicates a write target could not be resolved to
	// a writable anchor cell.
	ErrMergeResolution = errors.New("cannot resolve merged cell anchor")
	// ErrSourceDocumentMissing indicates the original workbook cannot be
	// found at save time.
	ErrSourceDocumentMissing = errors.New("source workbook not found")
	// ErrFilenameFormat indicates a workbook filename does not encode the
	// expected day/period/year suffix.
	ErrFilenameFormat = errors.New("filename does not encode day, period and year")
)
