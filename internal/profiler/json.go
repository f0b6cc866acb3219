package profiler

import (
	"math"

	"github.com/goccy/go-json"
)

type jsonCount struct {
	Column string `json:"column"`
	Value  int    `json:"value"`
}

type jsonValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type jsonFrequencies struct {
	Column string           `json:"column"`
	Values []jsonValueCount `json:"values"`
}

type jsonStat struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"` // nil when not finite
}

type jsonSummary struct {
	Column string     `json:"column"`
	Stats  []jsonStat `json:"stats"`
}

type jsonSection struct {
	Title       string            `json:"title"`
	Counts      []jsonCount       `json:"counts,omitempty"`
	Frequencies []jsonFrequencies `json:"frequencies,omitempty"`
	Summaries   []jsonSummary     `json:"summaries,omitempty"`
}

type jsonReport struct {
	Title    string        `json:"title"`
	Sections []jsonSection `json:"sections"`
}

// MarshalJSON renders the report with ordered arrays so column order
// survives. Undefined and infinite statistics become null.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := jsonReport{Title: r.Title, Sections: make([]jsonSection, 0, len(r.Sections))}

	for _, s := range r.Sections {
		js := jsonSection{Title: s.Title}
		for _, c := range s.Counts {
			js.Counts = append(js.Counts, jsonCount{Column: c.Column, Value: c.Value})
		}
		for _, f := range s.Frequencies {
			jf := jsonFrequencies{Column: f.Column, Values: make([]jsonValueCount, 0, len(f.Values))}
			for _, v := range f.Values {
				jf.Values = append(jf.Values, jsonValueCount{Value: v.Value, Count: v.Count})
			}
			js.Frequencies = append(js.Frequencies, jf)
		}
		for _, sum := range s.Summaries {
			jsum := jsonSummary{Column: sum.Column}
			for _, st := range sum.Stats() {
				stat := jsonStat{Name: st.Name}
				if !IsUndefined(st.Value) && !math.IsInf(st.Value, 0) {
					v := st.Value
					stat.Value = &v
				}
				jsum.Stats = append(jsum.Stats, stat)
			}
			js.Summaries = append(js.Summaries, jsum)
		}
		out.Sections = append(out.Sections, js)
	}

	return json.Marshal(out)
}
