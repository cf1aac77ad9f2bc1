package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Markdown renders a compact summary for terminals and docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.BasicInfo.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.BasicInfo.Columns))
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n\n", r.Duplicates))

	b.WriteString("[SCHEMA]\n")
	for _, name := range r.BasicInfo.ColumnNames {
		kind, _ := r.BasicInfo.Dtypes.Get(name)
		missing, _ := r.MissingValues.Get(name)
		missPct := 0.0
		if r.BasicInfo.Rows > 0 {
			missPct = float64(missing) * 100.0 / float64(r.BasicInfo.Rows)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, %.1f%%)", safeName(name), kind, missing, missPct))
		if st, ok := r.Statistics.Get(name); ok && st.Count > 0 {
			b.WriteString(fmt.Sprintf("; min %s, p50 %s, max %s, mean %s, std %s",
				fmtStat(st.Min), fmtStat(st.P50), fmtStat(st.Max), fmtStat(st.Mean), fmtStat(st.Std)))
		}
		b.WriteString("\n")
	}

	if r.Correlation != nil && r.Correlation.Len() >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		names := r.Correlation.Names()
		for i := 0; i < len(names); i++ {
			row, _ := r.Correlation.Get(names[i])
			for j := i + 1; j < len(names); j++ {
				if v, _ := row.Get(names[j]); v != nil {
					pairs = append(pairs, pr{A: names[i], B: names[j], R: *v})
				}
			}
		}
		sort.SliceStable(pairs, func(i, j int) bool {
			return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", safeName(p.A), safeName(p.B), p.R))
		}
	}
	return b.String()
}

func fmtStat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", *v)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
