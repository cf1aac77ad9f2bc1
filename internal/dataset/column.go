package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the declared type of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
	Text
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind by name in JSON/YAML output.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind resolves a kind name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numeric", "number", "float":
		return Numeric, nil
	case "categorical", "category":
		return Categorical, nil
	case "text", "string":
		return Text, nil
	}
	return 0, fmt.Errorf("unknown column kind %q (use numeric|categorical|text)", s)
}

// Column is an immutable named sequence of cells. Numeric columns store
// float64 values; categorical and text columns store strings. A cell whose
// valid flag is false is missing.
type Column struct {
	name  string
	kind  Kind
	nums  []float64
	strs  []string
	valid []bool
}

// NewNumeric builds a numeric column. A nil valid slice marks every cell as
// present; NaN values are always treated as missing. Inputs are copied.
func NewNumeric(name string, vals []float64, valid []bool) *Column {
	c := &Column{name: name, kind: Numeric, nums: make([]float64, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		ok := valid == nil || (i < len(valid) && valid[i])
		if math.IsNaN(v) {
			ok = false
		}
		if !ok {
			continue
		}
		if v == 0 && math.Signbit(v) {
			v = 0 // fold -0
		}
		c.nums[i] = v
		c.valid[i] = true
	}
	return c
}

// NewStrings builds a categorical or text column. Passing Numeric yields a
// categorical column. A nil valid slice marks every cell as present.
func NewStrings(name string, kind Kind, vals []string, valid []bool) *Column {
	if kind == Numeric {
		kind = Categorical
	}
	c := &Column{name: name, kind: kind, strs: make([]string, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		if valid != nil && (i >= len(valid) || !valid[i]) {
			continue
		}
		c.strs[i] = v
		c.valid[i] = true
	}
	return c
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column kind.
func (c *Column) Kind() Kind { return c.kind }

// IsNumeric reports whether cells are float64 values.
func (c *Column) IsNumeric() bool { return c.kind == Numeric }

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.valid) }

// Missing reports whether cell i has no recorded value.
func (c *Column) Missing(i int) bool { return !c.valid[i] }

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Float returns the numeric value of cell i. ok is false for missing cells
// and for non-numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if c.kind != Numeric || !c.valid[i] {
		return 0, false
	}
	return c.nums[i], true
}

// Str returns the string value of cell i; numeric cells are formatted.
func (c *Column) Str(i int) (string, bool) {
	if !c.valid[i] {
		return "", false
	}
	if c.kind == Numeric {
		return FormatNumber(c.nums[i]), true
	}
	return c.strs[i], true
}

// Value returns float64, string, or nil for a missing cell.
func (c *Column) Value(i int) any {
	if !c.valid[i] {
		return nil
	}
	if c.kind == Numeric {
		return c.nums[i]
	}
	return c.strs[i]
}

// Present returns the numeric values of present cells in row order.
func (c *Column) Present() []float64 {
	if c.kind != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Renamed returns a copy of the column under a new name.
func (c *Column) Renamed(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}

// Equal reports whether two columns have the same name, kind and cells.
func (c *Column) Equal(o *Column) bool {
	if c.name != o.name || c.kind != o.kind || c.Len() != o.Len() {
		return false
	}
	for i := range c.valid {
		if !cellsEqual(c, i, o, i) {
			return false
		}
	}
	return true
}

func (c *Column) take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind, valid: make([]bool, len(rows))}
	if c.kind == Numeric {
		out.nums = make([]float64, len(rows))
	} else {
		out.strs = make([]string, len(rows))
	}
	for k, r := range rows {
		out.valid[k] = c.valid[r]
		if c.kind == Numeric {
			out.nums[k] = c.nums[r]
		} else {
			out.strs[k] = c.strs[r]
		}
	}
	return out
}

// cellsEqual compares cell i of a with cell j of b; missing equals missing.
func cellsEqual(a *Column, i int, b *Column, j int) bool {
	if a.valid[i] != b.valid[j] {
		return false
	}
	if !a.valid[i] {
		return true
	}
	if a.IsNumeric() != b.IsNumeric() {
		return false
	}
	if a.IsNumeric() {
		return a.nums[i] == b.nums[j]
	}
	return a.strs[i] == b.strs[j]
}

// FormatNumber renders a float in the shortest form that parses back to the
// same value, avoiding exponents for ordinary magnitudes.
func FormatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e15 || abs < 1e-6) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
