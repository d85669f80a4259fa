package excel

import "strings"

// RowRole is the structural meaning of a worksheet row, inferred from the
// styling of its lead cell.
type RowRole int

const (
	// RoleIgnore marks rows with no structural meaning (empty lead cell).
	RoleIgnore RowRole = iota
	// RoleCategory marks a highlighted, bold category header.
	RoleCategory
	// RoleTask marks a bold task header.
	RoleTask
	// RoleDescription marks a plain continuation line.
	RoleDescription
)

func (r RowRole) String() string {
	switch r {
	case RoleCategory:
		return "category"
	case RoleTask:
		return "task"
	case RoleDescription:
		return "description"
	default:
		return "ignore"
	}
}

// Classifier maps lead-cell styling to a RowRole. It is a pure function of
// text, fill color and bold flag; placement decisions (orphan handling)
// belong to the tree builder.
type Classifier struct {
	categoryFills map[string]struct{}
}

// NewClassifier builds a classifier recognising the given category
// highlight colors. Colors are matched after normalisation, so "FFFF00",
// "#ffff00" and ARGB "FFFFFF00" all identify the same fill.
func NewClassifier(fills []string) *Classifier {
	set := make(map[string]struct{}, len(fills))
	for _, fill := range fills {
		if normalized := NormalizeColor(fill); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return &Classifier{categoryFills: set}
}

// Classify determines the role of a row from its lead cell.
func (c *Classifier) Classify(text, fill string, bold bool) RowRole {
	if strings.TrimSpace(text) == "" {
		return RoleIgnore
	}
	if bold {
		if _, ok := c.categoryFills[NormalizeColor(fill)]; ok {
			return RoleCategory
		}
		return RoleTask
	}
	return RoleDescription
}

// NormalizeColor upper-cases a fill color, strips a leading "#", and drops
// the alpha channel from 8-digit ARGB values.
func NormalizeColor(color string) string {
	color = strings.ToUpper(strings.TrimSpace(color))
	color = strings.TrimPrefix(color, "#")
	if len(color) == 8 {
		color = color[2:]
	}
	return color
}
