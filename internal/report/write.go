package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/roboscout/internal/domain/model"
	"github.com/okian/roboscout/pkg/metrics"
)

// TimestampLayout suffixes report file names.
const TimestampLayout = "20060102_150405"

// Files names the written report files.
type Files struct {
	Text string
	CSV  string
}

// Write sorts aggs by key and writes <prefix>_<timestamp>.txt and .csv into
// dir. Both files come from the same sorted slice.
func Write(dir, prefix string, aggs []*model.TeamAggregate, key SortKey, now time.Time) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	sorted := Sort(aggs, key)
	stamp := now.Format(TimestampLayout)
	files := Files{
		Text: filepath.Join(dir, fmt.Sprintf("%s_%s.txt", prefix, stamp)),
		CSV:  filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, stamp)),
	}

	var text bytes.Buffer
	records := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		text.WriteString(TextLine(agg))
		text.WriteByte('\n')
		records = append(records, CSVRecord(agg))
	}
	if err := os.WriteFile(files.Text, text.Bytes(), 0o644); err != nil {
		return Files{}, fmt.Errorf("%w: %v", ErrWriteReport, err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return Files{}, fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	if err := os.WriteFile(files.CSV, buf.Bytes(), 0o644); err != nil {
		return Files{}, fmt.Errorf("%w: %v", ErrWriteReport, err)
	}

	metrics.RecordReportRows(len(sorted))
	return files, nil
}
