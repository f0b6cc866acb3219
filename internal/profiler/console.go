package profiler

import (
	"fmt"
	"io"
	"os"
)

// Console prints single metric results using the report's line shapes.
type Console struct {
	W io.Writer
}

// NewConsole returns a Console writing to w, or to stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{W: w}
}

func (c *Console) writeLines(title string, lines []string) error {
	if _, err := fmt.Fprintf(c.W, "%s:\n", title); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(c.W, l); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) PrintCounts(title string, counts Counts) error {
	return c.writeLines(title, countLines(counts))
}

func (c *Console) PrintFrequencies(title string, freqs []Frequencies) error {
	var lines []string
	for _, f := range freqs {
		lines = append(lines, "", fmt.Sprintf("Value counts for %s:", f.Column))
		lines = append(lines, frequencyLines(f)...)
	}
	return c.writeLines(title, lines)
}

func (c *Console) PrintSummaries(title string, sums []Summary) error {
	var lines []string
	for _, s := range sums {
		lines = append(lines, "", fmt.Sprintf("Statistics for %s:", s.Column))
		lines = append(lines, summaryLines(s)...)
	}
	return c.writeLines(title, lines)
}

// PrintSection prints one report section.
func (c *Console) PrintSection(s Section) error {
	switch s.Kind {
	case FrequenciesSection:
		return c.PrintFrequencies(s.Title, s.Frequencies)
	case SummariesSection:
		return c.PrintSummaries(s.Title, s.Summaries)
	}
	return c.PrintCounts(s.Title, s.Counts)
}
