package report_test

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/roboscout/internal/domain/model"
	"github.com/okian/roboscout/internal/report"
	. "github.com/smartystreets/goconvey/convey"
)

func team(code string, qual, elim, combined []int) *model.TeamAggregate {
	agg := model.NewTeamAggregate(model.TeamIdentity{Code: code})
	agg.QualScores = qual
	agg.ElimScores = elim
	agg.CombinedSkills = combined
	return agg
}

func codes(aggs []*model.TeamAggregate) []string {
	out := make([]string, len(aggs))
	for i, a := range aggs {
		out[i] = a.Code()
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	Convey("Given sort key names", t, func() {
		k, err := report.ParseSortKey("")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, report.SortSkillAverage)

		k, err = report.ParseSortKey("QUAL_THEN_SKILL")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, report.SortQualThenSkill)
		So(k.Label(), ShouldContainSubstring, "then skill")

		_, err = report.ParseSortKey("elims")
		So(errors.Is(err, report.ErrUnknownSortKey), ShouldBeTrue)
	})
}

func TestSort(t *testing.T) {
	Convey("Given aggregates with tied keys", t, func() {
		aggs := []*model.TeamAggregate{
			team("A", []int{10}, nil, []int{50}),
			team("B", []int{30}, nil, []int{70}),
			team("C", []int{30}, nil, []int{50}),
			team("D", []int{5, 55}, nil, []int{70}),
		}

		Convey("When sorting by skill average", func() {
			out := report.Sort(aggs, report.SortSkillAverage)

			Convey("Then ties keep input order", func() {
				So(codes(out), ShouldResemble, []string{"B", "D", "A", "C"})
				So(codes(aggs), ShouldResemble, []string{"A", "B", "C", "D"})
			})
		})

		Convey("When sorting by qualification average", func() {
			out := report.Sort(aggs, report.SortQualAverage)
			So(codes(out), ShouldResemble, []string{"B", "C", "D", "A"})
		})

		Convey("When sorting by best qualification", func() {
			out := report.Sort(aggs, report.SortBestQual)
			So(codes(out), ShouldResemble, []string{"D", "B", "C", "A"})
		})

		Convey("When sorting by qualification then skill", func() {
			out := report.Sort(aggs, report.SortQualThenSkill)
			So(codes(out), ShouldResemble, []string{"B", "D", "C", "A"})
		})
	})
}

func TestTextLine(t *testing.T) {
	Convey("Given a team with qualification scores 10, 20, 30", t, func() {
		agg := team("90241A", []int{10, 20, 30}, nil, []int{55})

		Convey("Then the text line follows the spreadsheet layout", func() {
			So(report.TextLine(agg), ShouldEqual,
				"90241A 20.00 30 0.00 55.00 90241A 30 90241A 30 90241A 0.00 90241A 0.00 90241A 55.00 90241A 55.00")
		})
	})
}

func TestCSVRoundTrip(t *testing.T) {
	Convey("Given aggregates rendered to CSV", t, func() {
		a := team("90241A", []int{10, 25, 31}, []int{44, 13}, []int{55, 70, 12})
		a.BestEventName = "Regional, Day 1"
		a.BestEventScore = 31
		a.DriverScores = []int{40, 55}
		a.ProgrammingScores = []int{12}
		a.Events = make([]model.EventSummary, 3)
		b := team("1234B", nil, nil, nil)

		var buf bytes.Buffer
		err := report.WriteCSV(&buf, [][]string{report.CSVRecord(a), report.CSVRecord(b)})
		So(err, ShouldBeNil)

		Convey("When reading the CSV back", func() {
			rows, err := report.ReadCSV(&buf)

			Convey("Then known columns reproduce the aggregate to two decimals", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				r := rows[0]
				So(r.Team, ShouldEqual, "90241A")
				So(math.Abs(r.QualAvg-a.QualAverage), ShouldBeLessThanOrEqualTo, 0.005)
				So(math.Abs(r.ElimAvg-a.ElimAverage), ShouldBeLessThanOrEqualTo, 0.005)
				So(math.Abs(r.SkillAvg-a.SkillAverage), ShouldBeLessThanOrEqualTo, 0.005)
				So(r.BestQual, ShouldEqual, 31)
				So(r.BestEvent, ShouldEqual, "Regional, Day 1")
				So(r.BestEventScore, ShouldEqual, 31)
				So(r.Events, ShouldEqual, 3)
				So(r.DriverSkills, ShouldEqual, 55)
				So(r.ProgrammingSkills, ShouldEqual, 12)
				So(rows[1].QualAvg, ShouldEqual, 0)
			})
		})
	})

	Convey("Given malformed CSV input", t, func() {
		_, err := report.ReadCSV(strings.NewReader(""))
		So(errors.Is(err, report.ErrMalformedCSV), ShouldBeTrue)

		_, err = report.ReadCSV(strings.NewReader("Team,Qual Avg\n1A,2.00\n"))
		So(errors.Is(err, report.ErrMalformedCSV), ShouldBeTrue)

		header := strings.Join(report.CSVHeader, ",")
		_, err = report.ReadCSV(strings.NewReader(header + "\n1A,abc,1,0,0,,0,0,0,0\n"))
		So(errors.Is(err, report.ErrMalformedCSV), ShouldBeTrue)
	})
}

func TestWrite(t *testing.T) {
	Convey("Given a batch of aggregates", t, func() {
		dir := t.TempDir()
		aggs := []*model.TeamAggregate{
			team("A", []int{10}, nil, []int{20}),
			team("B", []int{50}, nil, []int{90}),
		}
		now := time.Date(2024, 11, 2, 14, 5, 9, 0, time.UTC)

		Convey("When writing the report", func() {
			files, err := report.Write(filepath.Join(dir, "out"), "robotics_teams", aggs, report.SortSkillAverage, now)

			Convey("Then timestamped text and CSV files hold the same order", func() {
				So(err, ShouldBeNil)
				So(filepath.Base(files.Text), ShouldEqual, "robotics_teams_20241102_140509.txt")
				So(filepath.Base(files.CSV), ShouldEqual, "robotics_teams_20241102_140509.csv")

				text, err := os.ReadFile(files.Text)
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(string(text)), "\n")
				So(len(lines), ShouldEqual, 2)
				So(lines[0], ShouldStartWith, "B ")
				So(lines[1], ShouldStartWith, "A ")

				f, err := os.Open(files.CSV)
				So(err, ShouldBeNil)
				defer f.Close()
				rows, err := report.ReadCSV(f)
				So(err, ShouldBeNil)
				So(rows[0].Team, ShouldEqual, "B")
				So(rows[1].Team, ShouldEqual, "A")
			})
		})

		Convey("When the directory cannot be created", func() {
			blocker := filepath.Join(dir, "file")
			So(os.WriteFile(blocker, []byte("x"), 0o644), ShouldBeNil)
			_, err := report.Write(filepath.Join(blocker, "sub"), "r", aggs, report.SortSkillAverage, now)

			Convey("Then ErrWriteReport is returned", func() {
				So(errors.Is(err, report.ErrWriteReport), ShouldBeTrue)
			})
		})
	})
}

func TestTable(t *testing.T) {
	Convey("Given aggregates with a wide event name", t, func() {
		a := team("90241A", []int{10, 30}, nil, []int{55})
		a.BestEventName = "世界選手権"
		a.BestEventScore = 30
		b := team("1B", nil, nil, nil)

		var buf bytes.Buffer
		err := report.Table(&buf, []*model.TeamAggregate{a, b})

		Convey("Then a header, separator and one row per team are written", func() {
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			So(len(lines), ShouldEqual, 4)
			So(lines[0], ShouldContainSubstring, "Skill Avg")
			So(lines[2], ShouldContainSubstring, "世界選手権 (30)")
			So(lines[3], ShouldContainSubstring, "1B")
			So(strings.Index(lines[2], "20.00"), ShouldBeGreaterThan, 0)
		})
	})
}
