package models

import (
	"sort"
	"strings"
)

// Sentinel marks an input slot that has not been filled yet. It is written
// into the interchange form during extraction and recognised again when
// allocating slots for a new entry.
const Sentinel = "no input"

// CommentMarker names the pseudo-task that carries free-text notes. Tasks
// with this name are excluded from task counts and from every write pass.
const CommentMarker = "comments:"

// StatusOK and StatusNotOK are the two recognised task outcomes.
const (
	StatusOK    = "OK"
	StatusNotOK = "NOT_OK"
)

// Task represents a single checklist item extracted from a worksheet row.
// Inputs maps cell coordinates (e.g. "B12") to either real cell content or
// the Sentinel value.
type Task struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Inputs      map[string]string `json:"inputs"`
}

// Category groups the tasks listed under one highlighted header row.
type Category struct {
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

// Sheet represents one processed worksheet. The name is positional
// ("Sheet 1", "Sheet 2", ...) so the rewrite pass can map it back to the
// worksheet at the same ordinal.
type Sheet struct {
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
}

// IsComment reports whether the task is the free-text comment carrier.
func (t Task) IsComment() bool {
	return strings.EqualFold(strings.TrimSpace(t.Name), CommentMarker)
}

// SortedCoords returns the task's input coordinates ordered by column then
// row. Slot position in this ordering is significant: the first slot holds
// the author/date stamp, the second the status.
func (t Task) SortedCoords() []string {
	coords := make([]string, 0, len(t.Inputs))
	for coord := range t.Inputs {
		coords = append(coords, coord)
	}
	sort.Slice(coords, func(i, j int) bool {
		ci, ri := splitCoord(coords[i])
		cj, rj := splitCoord(coords[j])
		if ci != cj {
			return columnNumber(ci) < columnNumber(cj)
		}
		return ri < rj
	})
	return coords
}

// Fill writes the author stamp into the first unfilled slot and the status
// into the next one. It mutates slot values only and reports whether any
// slot changed.
func (t *Task) Fill(stamp, status string) bool {
	changed := false
	remaining := []string{stamp, status}
	for _, coord := range t.SortedCoords() {
		if len(remaining) == 0 {
			break
		}
		if strings.EqualFold(t.Inputs[coord], Sentinel) {
			t.Inputs[coord] = remaining[0]
			remaining = remaining[1:]
			changed = true
		}
	}
	return changed
}

// Status returns the recorded outcome for the task, or "" when no slot
// holds a recognised status label.
func (t Task) Status() string {
	for _, coord := range t.SortedCoords() {
		value := strings.ToUpper(strings.TrimSpace(t.Inputs[coord]))
		if value == StatusOK || value == StatusNotOK {
			return value
		}
	}
	return ""
}

// CountTasks returns the number of non-comment tasks across the tree.
func CountTasks(sheets []Sheet) int {
	total := 0
	for _, sheet := range sheets {
		for _, category := range sheet.Categories {
			for _, task := range category.Tasks {
				if !task.IsComment() {
					total++
				}
			}
		}
	}
	return total
}

// CountFilled returns the number of non-comment tasks that carry a status.
func CountFilled(sheets []Sheet) int {
	filled := 0
	for _, sheet := range sheets {
		for _, category := range sheet.Categories {
			for _, task := range category.Tasks {
				if !task.IsComment() && task.Status() != "" {
					filled++
				}
			}
		}
	}
	return filled
}

func splitCoord(coord string) (string, int) {
	letters := strings.Builder{}
	digits := 0
	for _, r := range coord {
		if r >= 'A' && r <= 'Z' {
			letters.WriteRune(r)
			continue
		}
		if r >= 'a' && r <= 'z' {
			letters.WriteRune(r - 32)
			continue
		}
		if r >= '0' && r <= '9' {
			digits = digits*10 + int(r-'0')
		}
	}
	return letters.String(), digits
}

func columnNumber(letters string) int {
	n := 0
	for _, r := range letters {
		n = n*26 + int(r-'A'+1)
	}
	return n
}
