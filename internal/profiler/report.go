package profiler

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const ReportTitle = "Data Quality Report"

// SectionKind tells which of a Section's payloads is set.
type SectionKind uint8

const (
	CountsSection SectionKind = iota
	FrequenciesSection
	SummariesSection
)

// Section is one labelled block of a report.
type Section struct {
	Title       string
	Kind        SectionKind
	Counts      Counts
	Frequencies []Frequencies
	Summaries   []Summary
}

// Report is the ordered result of every metric. It is built once by
// GenerateReport and not modified afterwards.
type Report struct {
	Title    string
	Sections []Section
}

// GenerateReport runs every metric in a fixed order: missing, unique,
// text-unique, float-unique, int-unique, categorical frequencies and the
// numeric description.
func (p *Profiler) GenerateReport() *Report {
	r := &Report{
		Title: ReportTitle,
		Sections: []Section{
			{Title: "Missing value counts", Kind: CountsSection, Counts: p.CountMissing()},
			{Title: "Unique value counts", Kind: CountsSection, Counts: p.CountUnique()},
			{Title: "Unique text value counts", Kind: CountsSection, Counts: p.CountTextValues()},
			{Title: "Unique float value counts", Kind: CountsSection, Counts: p.CountFloatValues()},
			{Title: "Unique integer value counts", Kind: CountsSection, Counts: p.CountIntValues()},
			{Title: "Value counts for categorical columns", Kind: FrequenciesSection, Frequencies: p.ValueCountsCategorical()},
			{Title: "Statistical description of numeric columns", Kind: SummariesSection, Summaries: p.DescribeNumeric()},
		},
	}

	p.log.WithFields(logrus.Fields{
		"rows":    p.ds.NumRows(),
		"columns": len(p.ds.Columns()),
	}).Debug("generated report")

	return r
}

// Lines renders the report as text lines.
func (r *Report) Lines() []string {
	lines := []string{fmt.Sprintf("=== %s ===", r.Title), ""}

	for i, s := range r.Sections {
		lines = append(lines, fmt.Sprintf("%d. %s:", i+1, s.Title))

		switch s.Kind {
		case CountsSection:
			lines = append(lines, countLines(s.Counts)...)
		case FrequenciesSection:
			for _, f := range s.Frequencies {
				lines = append(lines, "", fmt.Sprintf("Value counts for %s:", f.Column))
				lines = append(lines, frequencyLines(f)...)
			}
		case SummariesSection:
			for _, sum := range s.Summaries {
				lines = append(lines, "", fmt.Sprintf("Statistics for %s:", sum.Column))
				lines = append(lines, summaryLines(sum)...)
			}
		}

		if i < len(r.Sections)-1 {
			lines = append(lines, "")
		}
	}

	return lines
}

// String renders the report as text terminated by a newline.
func (r *Report) String() string {
	return strings.Join(r.Lines(), "\n") + "\n"
}

// WriteTo writes the text rendering of the report to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}

// Section returns the section with the given title.
func (r *Report) Section(title string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

func countLines(c Counts) []string {
	lines := make([]string, len(c))
	for i, e := range c {
		lines[i] = fmt.Sprintf("%s: %d", e.Column, e.Value)
	}
	return lines
}

func frequencyLines(f Frequencies) []string {
	lines := make([]string, len(f.Values))
	for i, v := range f.Values {
		lines[i] = fmt.Sprintf("  %s: %d", v.Value, v.Count)
	}
	return lines
}

func summaryLines(s Summary) []string {
	st := s.Stats()
	lines := make([]string, len(st))
	for i, e := range st {
		lines[i] = fmt.Sprintf("  %s: %s", e.Name, FormatStat(e.Value))
	}
	return lines
}

// FormatStat rounds v to two decimals; Undefined renders as "NaN".
func FormatStat(v float64) string {
	if IsUndefined(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}
