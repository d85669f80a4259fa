package excel

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"ims/internal/models"
)

// Identity is the filename-encoded tuple identifying one reporting
// document: the base name followed by day, period label and two-digit
// year. It is parsed once per rewrite and validated up front instead of
// being re-split at each decision point.
type Identity struct {
	Base   string
	Day    int
	Period string
	Year   int
}

// ParseIdentity extracts the identity tuple from a workbook path. The stem
// must end in three whitespace-separated tokens (day, period, year); any
// leading tokens form the base name verbatim.
func ParseIdentity(path string) (Identity, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tokens := strings.Fields(stem)
	if len(tokens) < 3 {
		return Identity{}, fmt.Errorf("%w: %q", ErrFilenameFormat, stem)
	}
	day, err := strconv.Atoi(tokens[len(tokens)-3])
	if err != nil || day < 1 || day > 31 {
		return Identity{}, fmt.Errorf("%w: bad day %q", ErrFilenameFormat, tokens[len(tokens)-3])
	}
	period := strings.ToUpper(tokens[len(tokens)-2])
	if !models.KnownPeriod(period) {
		return Identity{}, fmt.Errorf("%w: bad period %q", ErrFilenameFormat, tokens[len(tokens)-2])
	}
	year, err := strconv.Atoi(tokens[len(tokens)-1])
	if err != nil || year < 0 || year > 99 {
		return Identity{}, fmt.Errorf("%w: bad year %q", ErrFilenameFormat, tokens[len(tokens)-1])
	}
	return Identity{
		Base:   strings.Join(tokens[:len(tokens)-3], " "),
		Day:    day,
		Period: period,
		Year:   year,
	}, nil
}

// Filename renders the identity back into a workbook filename.
func (id Identity) Filename() string {
	if id.Base == "" {
		return fmt.Sprintf("%d %s %02d.xlsx", id.Day, id.Period, id.Year)
	}
	return fmt.Sprintf("%s %d %s %02d.xlsx", id.Base, id.Day, id.Period, id.Year)
}

// WriteMode selects one of the two mutually exclusive rewrite strategies.
type WriteMode int

const (
	// SamePeriod appends the new entry into the next unfilled slot pair,
	// preserving earlier entries from the same reporting period.
	SamePeriod WriteMode = iota
	// NewPeriod clears historical input data before writing into the first
	// slot pair of every task.
	NewPeriod
)

func (m WriteMode) String() string {
	if m == NewPeriod {
		return "new-period"
	}
	return "same-period"
}

// TransitionMode decides the rewrite strategy by comparing the previous
// document's period label with the newly selected one. The decision is
// made once per session and threaded through the rewrite explicitly.
func TransitionMode(previous, next string) WriteMode {
	if strings.EqualFold(strings.TrimSpace(previous), strings.TrimSpace(next)) {
		return SamePeriod
	}
	return NewPeriod
}
