package pipeline

import (
	"fmt"
	"strings"
)

// CleanScope decides which table the cleaning step sees.
type CleanScope string

const (
	// CleanProjected cleans after projection, so duplicates and nulls are
	// judged on the selected columns only.
	CleanProjected CleanScope = "projected"
	// CleanSource cleans the full source table, then projects.
	CleanSource CleanScope = "source"
)

// ParseCleanScope accepts "projected" (default when empty) or "source".
func ParseCleanScope(s string) (CleanScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(CleanProjected):
		return CleanProjected, nil
	case string(CleanSource):
		return CleanSource, nil
	default:
		return "", fmt.Errorf("invalid clean scope %q (use projected or source)", s)
	}
}

// ViewOptions is what the user picked for one recomputation.
type ViewOptions struct {
	Columns        []string `json:"columns" yaml:"columns"`
	DropDuplicates bool     `json:"drop_duplicates" yaml:"drop_duplicates"`
	DropNulls      bool     `json:"drop_nulls" yaml:"drop_nulls"`
	GroupBy        []string `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	Aggregate      string   `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
	// RowLimit keeps the first n rows; 0 keeps all.
	RowLimit int `json:"row_limit,omitempty" yaml:"row_limit,omitempty"`
}

// Grouping reports whether the options ask for aggregation.
func (o ViewOptions) Grouping() bool { return len(o.GroupBy) > 0 }

// Settings are fixed for a run and come from configuration.
type Settings struct {
	Scope CleanScope
	// MaxGroupColumns caps len(GroupBy); 0 means no cap.
	MaxGroupColumns int
	// GroupableMaxDistinct is the distinct-value ceiling for numeric group keys.
	GroupableMaxDistinct int
}

// DefaultSettings mirrors the stock configuration.
func DefaultSettings() Settings {
	return Settings{Scope: CleanProjected, MaxGroupColumns: 2, GroupableMaxDistinct: 20}
}
