package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one team read back from a CSV report.
type Row struct {
	Team              string
	QualAvg           float64
	BestQual          int
	ElimAvg           float64
	SkillAvg          float64
	BestEvent         string
	BestEventScore    int
	Events            int
	DriverSkills      int
	ProgrammingSkills int
}

// WriteCSV writes CSVHeader followed by records.
func WriteCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// ReadCSV parses a report written by WriteCSV. Columns are located by
// header name, so reordered or extra columns are tolerated.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range CSVHeader {
		if _, found := index[name]; !found {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedCSV, name)
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for line, rec := range records[1:] {
		p := fieldParser{rec: rec, index: index}
		row := Row{
			Team:              p.text("Team"),
			QualAvg:           p.decimal("Qual Avg"),
			BestQual:          p.integer("Best Qual"),
			ElimAvg:           p.decimal("Elims Avg"),
			SkillAvg:          p.decimal("Skill Avg"),
			BestEvent:         p.text("Best Event"),
			BestEventScore:    p.integer("Best Event Score"),
			Events:            p.integer("Events"),
			DriverSkills:      p.integer("Driver Skills"),
			ProgrammingSkills: p.integer("Programming Skills"),
		}
		if p.err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line+2, p.err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// fieldParser keeps the first conversion error of a record.
type fieldParser struct {
	rec   []string
	index map[string]int
	err   error
}

func (p *fieldParser) text(name string) string {
	i := p.index[name]
	if i >= len(p.rec) {
		if p.err == nil {
			p.err = fmt.Errorf("column %q missing", name)
		}
		return ""
	}
	return strings.TrimSpace(p.rec[i])
}

func (p *fieldParser) decimal(name string) float64 {
	s := p.text(name)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %q: %w", name, err)
	}
	return v
}

func (p *fieldParser) integer(name string) int {
	s := p.text(name)
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %q: %w", name, err)
	}
	return v
}
