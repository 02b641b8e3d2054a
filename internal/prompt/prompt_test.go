package prompt_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/okian/roboscout/internal/prompt"
	"github.com/okian/roboscout/internal/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPrompter(t *testing.T) {
	Convey("Given scripted answers", t, func() {
		var out bytes.Buffer

		Convey("When a full run is entered", func() {
			p := prompt.New(strings.NewReader("tok-123\nabc\n191\n 90241A, ,1234B ,\n3\n"), &out)

			token, err := p.Token()
			So(err, ShouldBeNil)
			season, err := p.Season()
			So(err, ShouldBeNil)
			codes, err := p.Codes()
			So(err, ShouldBeNil)
			key, err := p.SortKey()
			So(err, ShouldBeNil)

			Convey("Then every answer is parsed and bad ones re-asked", func() {
				So(token, ShouldEqual, "tok-123")
				So(season, ShouldEqual, 191)
				So(codes, ShouldResemble, []string{"90241A", "1234B"})
				So(key, ShouldEqual, report.SortBestQual)
				So(out.String(), ShouldContainSubstring, `Invalid season "abc"`)
				So(out.String(), ShouldContainSubstring, "4. qualification average, then skill average")
			})
		})

		Convey("When the sort choice is left empty", func() {
			key, err := prompt.New(strings.NewReader("\n"), &out).SortKey()
			So(err, ShouldBeNil)
			So(key, ShouldEqual, report.SortSkillAverage)
		})

		Convey("When the sort choice is a key name after an invalid number", func() {
			key, err := prompt.New(strings.NewReader("9\nqual_avg\n"), &out).SortKey()
			So(err, ShouldBeNil)
			So(key, ShouldEqual, report.SortQualAverage)
		})

		Convey("When the last answer has no trailing newline", func() {
			season, err := prompt.New(strings.NewReader("190"), &out).Season()
			So(err, ShouldBeNil)
			So(season, ShouldEqual, 190)
		})

		Convey("When input ends early", func() {
			_, err := prompt.New(strings.NewReader(""), &out).Codes()
			So(errors.Is(err, prompt.ErrNoInput), ShouldBeTrue)
		})
	})
}

func TestSecretInput(t *testing.T) {
	Convey("Given a secret reader", t, func() {
		var out bytes.Buffer
		answers := []string{"  ", " hidden-key "}
		p := prompt.New(strings.NewReader("line-key\n"), &out).WithSecretInput(func() (string, error) {
			a := answers[0]
			answers = answers[1:]
			return a, nil
		})

		Convey("Then the key comes from it, not the line reader", func() {
			token, err := p.Token()
			So(err, ShouldBeNil)
			So(token, ShouldEqual, "hidden-key")
			So(strings.Count(out.String(), "API key"), ShouldEqual, 2)
		})
	})

	Convey("A regular file is not a terminal", t, func() {
		f, err := os.CreateTemp(t.TempDir(), "stdin")
		So(err, ShouldBeNil)
		defer f.Close()
		So(prompt.HiddenInput(f), ShouldBeNil)
	})
}

func TestSplitCodes(t *testing.T) {
	Convey("Given comma-separated codes", t, func() {
		So(prompt.SplitCodes("1A,2B"), ShouldResemble, []string{"1A", "2B"})
		So(prompt.SplitCodes(" , "), ShouldBeEmpty)
	})
}
