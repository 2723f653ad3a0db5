// Package render writes analysis results for terminals: aligned tables with
// colored trend and severity labels, or indented JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var (
	headingColor   = color.New(color.FgCyan, color.Bold)
	improvingColor = color.New(color.FgGreen)
	decliningColor = color.New(color.FgRed, color.Bold)
	highColor      = color.New(color.FgRed, color.Bold)
	mediumColor    = color.New(color.FgYellow)
	lowColor       = color.New(color.FgHiBlack)
)

// Write dispatches on format. Unknown formats are an error.
func Write(w io.Writer, format string, res models.AnalysisResult, skipped []models.SkippedRecord) error {
	switch format {
	case FormatJSON:
		return JSON(w, struct {
			Analysis models.AnalysisResult `json:"analysis"`
			Skipped  []models.SkippedRecord `json:"skipped_records"`
		}{res, nonNil(skipped)})
	case FormatTable, "":
		return Tables(w, res, skipped)
	default:
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}
}

func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Tables writes one table per non-empty section of res.
func Tables(w io.Writer, res models.AnalysisResult, skipped []models.SkippedRecord) error {
	sections := []func(io.Writer, models.AnalysisResult) error{
		overview,
		gradeTrends,
		attendanceByCourse,
		studyBySubject,
		predictions,
		improvementAreas,
	}
	for _, s := range sections {
		if err := s(w, res); err != nil {
			return err
		}
	}
	if len(skipped) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(skipped))
	for _, s := range skipped {
		rows = append(rows, []string{s.Category, strconv.Itoa(s.Index), s.Field, s.Reason})
	}
	return Table(w, "Skipped records", []string{"Category", "Index", "Field", "Reason"}, rows)
}

func overview(w io.Writer, res models.AnalysisResult) error {
	o := res.Summary.OverallPerformance
	return Table(w, "Overview", []string{"Metric", "Value"}, [][]string{
		{"Grade average", pct(o.GradeAverage)},
		{"Attendance rate", pct(o.AttendanceRate * 100)},
		{"Study hours", hours(o.StudyHours)},
		{"Improvement areas", strconv.Itoa(res.Summary.ImprovementAreas)},
	})
}

func gradeTrends(w io.Writer, res models.AnalysisResult) error {
	trends := res.GradeAnalysis.Trends
	if len(trends) == 0 {
		return nil
	}
	var rows [][]string
	for _, course := range slices.Sorted(maps.Keys(trends)) {
		t := trends[course]
		rows = append(rows, []string{course, TrendLabel(t.Trend), num(t.Average), num(t.Variance)})
	}
	return Table(w, "Grade trends", []string{"Course", "Trend", "Average", "Variance"}, rows)
}

func attendanceByCourse(w io.Writer, res models.AnalysisResult) error {
	patterns := res.AttendanceAnalysis.Patterns
	if len(patterns) == 0 {
		return nil
	}
	var rows [][]string
	for _, course := range slices.Sorted(maps.Keys(patterns)) {
		p := patterns[course]
		rows = append(rows, []string{course, pct(p.AttendanceRate * 100), strconv.Itoa(p.TotalSessions), strconv.Itoa(p.MissedSessions)})
	}
	return Table(w, "Attendance", []string{"Course", "Rate", "Sessions", "Missed"}, rows)
}

func studyBySubject(w io.Writer, res models.AnalysisResult) error {
	patterns := res.StudyHabitsAnalysis.Patterns
	if len(patterns) == 0 {
		return nil
	}
	var rows [][]string
	for _, subject := range slices.Sorted(maps.Keys(patterns)) {
		p := patterns[subject]
		rows = append(rows, []string{subject, hours(p.TotalHours), num(p.AverageSessionDuration), strconv.Itoa(p.Frequency)})
	}
	return Table(w, "Study habits", []string{"Subject", "Hours", "Avg session (min)", "Sessions"}, rows)
}

func predictions(w io.Writer, res models.AnalysisResult) error {
	p := res.Predictions
	keys := slices.Sorted(maps.Keys(p.FinalGrades))
	keys = append(keys, slices.Sorted(maps.Keys(p.Attendance))...)
	keys = append(keys, slices.Sorted(maps.Keys(p.StudyHabits))...)
	slices.Sort(keys)
	keys = slices.Compact(keys)
	if len(keys) == 0 {
		return nil
	}

	cell := func(m map[string]float64, k string, f func(float64) string) string {
		v, ok := m[k]
		if !ok {
			return "-"
		}
		return f(v)
	}
	var rows [][]string
	for _, k := range keys {
		rows = append(rows, []string{
			k,
			cell(p.FinalGrades, k, num),
			cell(p.Attendance, k, func(v float64) string { return pct(v * 100) }),
			cell(p.StudyHabits, k, hours),
		})
	}
	return Table(w, "Predictions", []string{"Group", "Final grade", "Attendance", "Study hours"}, rows)
}

func improvementAreas(w io.Writer, res models.AnalysisResult) error {
	if len(res.ImprovementAreas) == 0 {
		return nil
	}
	var rows [][]string
	for _, a := range res.ImprovementAreas {
		rows = append(rows, []string{a.Type, a.Subject, SeverityLabel(a.Severity), a.Description})
	}
	return Table(w, "Improvement areas", []string{"Type", "Subject", "Severity", "Description"}, rows)
}

// Table prints title followed by a right-aligned table.
func Table(w io.Writer, title string, header []string, rows [][]string) error {
	if _, err := headingColor.Fprintf(w, "\n%s\n", title); err != nil {
		return err
	}
	t := tablewriter.NewWriter(w)
	t.Header(header)
	t.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := t.Bulk(rows); err != nil {
		return err
	}
	return t.Render()
}

// TrendLabel colors improving green and declining red.
func TrendLabel(t models.Trend) string {
	switch t {
	case models.TrendImproving:
		return improvingColor.Sprint(string(t))
	case models.TrendDeclining:
		return decliningColor.Sprint(string(t))
	default:
		return string(t)
	}
}

func SeverityLabel(s string) string {
	switch s {
	case models.SeverityHigh:
		return highColor.Sprint(s)
	case models.SeverityMedium:
		return mediumColor.Sprint(s)
	default:
		return lowColor.Sprint(s)
	}
}

func num(v float64) string   { return strconv.FormatFloat(v, 'f', 2, 64) }
func pct(v float64) string   { return strconv.FormatFloat(v, 'f', 1, 64) + "%" }
func hours(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "h" }

func nonNil(s []models.SkippedRecord) []models.SkippedRecord {
	if s == nil {
		return []models.SkippedRecord{}
	}
	return s
}
