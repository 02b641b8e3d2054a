package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/okian/roboscout/internal/domain/model"
)

const maxEventWidth = 40

// Table writes an aligned console summary of aggs in slice order. Widths
// are measured in terminal cells so wide event names stay aligned.
func Table(w io.Writer, aggs []*model.TeamAggregate) error {
	header := []string{"#", "Team", "Qual Avg", "Best", "Elim Avg", "Skill Avg", "Best Event"}
	rows := make([][]string, 0, len(aggs))
	for i, agg := range aggs {
		agg.Finalize()
		event := agg.BestEventName
		if event != "" {
			event = fmt.Sprintf("%s (%d)", event, agg.BestEventScore)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			agg.Code(),
			avg(agg.QualAverage),
			strconv.Itoa(agg.BestQual),
			avg(agg.ElimAverage),
			avg(agg.SkillAverage),
			runewidth.Truncate(event, maxEventWidth, "..."),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	writeRow(&b, header, widths)
	sep := make([]string, len(widths))
	for i, wd := range widths {
		sep[i] = strings.Repeat("-", wd)
	}
	writeRow(&b, sep, widths)
	for _, row := range rows {
		writeRow(&b, row, widths)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeRow left-aligns text columns and right-aligns numeric ones.
func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		switch {
		case i == len(cells)-1:
			b.WriteString(cell)
		case i == 1:
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		default:
			b.WriteString(runewidth.FillLeft(cell, widths[i]))
		}
	}
	b.WriteByte('\n')
}
