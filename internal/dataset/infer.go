package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InferOptions controls how raw text cells become typed values.
type InferOptions struct {
	// DecimalSeparator for numbers. 0 or '.' means dot; ',' enables decimal
	// comma with '.' accepted as thousands separator.
	DecimalSeparator rune
	// NullTokens are additional cell contents read as missing.
	NullTokens []string
}

var defaultNullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-nan": {},
	"null": {},
	"NULL": {},
	"None": {},
	"<NA>": {},
	"#N/A": {},
}

// IsNullToken reports whether a trimmed cell is read as missing.
func (o InferOptions) IsNullToken(s string) bool {
	if _, ok := defaultNullTokens[s]; ok {
		return true
	}
	for _, tok := range o.NullTokens {
		if s == tok {
			return true
		}
	}
	return false
}

// ParseNumber parses a trimmed cell as a float. Infinities ("inf",
// "Infinity", overflowing literals) are not numbers, so a column holding
// them is categorical.
func (o InferOptions) ParseNumber(s string) (float64, bool) {
	raw := strings.ReplaceAll(s, " ", "")
	if o.DecimalSeparator == ',' {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// InferColumn types raw cells. The column is numeric when it has at least one
// non-missing cell and every non-missing cell parses as a number.
func InferColumn(name string, raw []string, opt InferOptions) *Column {
	vals := make([]Value, len(raw))
	nums := make([]float64, len(raw))
	numeric := false
	for i, cell := range raw {
		s := strings.TrimSpace(cell)
		if opt.IsNullToken(s) {
			continue
		}
		f, ok := opt.ParseNumber(s)
		if !ok {
			numeric = false
			break
		}
		nums[i] = f
		numeric = true
	}
	if numeric {
		for i, cell := range raw {
			if opt.IsNullToken(strings.TrimSpace(cell)) {
				vals[i] = Null()
				continue
			}
			vals[i] = Number(nums[i])
		}
		return &Column{name: name, kind: Numeric, values: vals}
	}
	for i, cell := range raw {
		s := strings.TrimSpace(cell)
		if opt.IsNullToken(s) {
			vals[i] = Null()
			continue
		}
		vals[i] = Text(s)
	}
	return &Column{name: name, kind: Categorical, values: vals}
}

// FromRecords builds a table from a header and row records. Short records are
// padded with missing cells, long ones truncated to the header width. Empty
// header names become "Unnamed: <i>" and repeated names get a ".<n>" suffix.
func FromRecords(name string, header []string, records [][]string, opt InferOptions) (*Table, error) {
	names := HeaderNames(header)
	cols := make([]*Column, len(names))
	raw := make([]string, len(records))
	for j, n := range names {
		for i, rec := range records {
			if j < len(rec) {
				raw[i] = rec[j]
			} else {
				raw[i] = ""
			}
		}
		cols[j] = InferColumn(n, raw, opt)
	}
	t, err := New(name, cols...)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	return t, nil
}

// HeaderNames normalizes header cells into unique column names.
func HeaderNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]struct{}, len(header))
	next := make(map[string]int, len(header))
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		base := n
		for {
			if _, dup := used[n]; !dup {
				break
			}
			next[base]++
			n = fmt.Sprintf("%s.%d", base, next[base])
		}
		used[n] = struct{}{}
		out[i] = n
	}
	return out
}
