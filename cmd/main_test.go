package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/roboscout/internal/report"
	"github.com/smartystreets/goconvey/convey"
)

// fakeAPI serves one team (id 7, "1234A") with one event (id 100).
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	page := func(items string) string {
		return `{"meta":{"current_page":1,"last_page":1,"per_page":250,"total":1},"data":[` + items + `]}`
	}
	routes := map[string]string{
		"/teams": page(`{"id":7,"number":"1234A","team_name":"Gears","program":{"id":1,"code":"VRC"}}`),
		"/teams/7/events": page(`{"id":100,"sku":"RE-1","name":"Kickoff Classic","start":"2024-10-05T08:00:00-05:00",` +
			`"program":{"id":1,"code":"VRC"},"divisions":[{"id":1,"name":"Div 1","order":1}]}`),
		"/events/100/matches": page(
			`{"id":1,"round":1,"instance":1,"matchnum":1,"alliances":[` +
				`{"color":"red","score":42,"teams":[{"team":{"id":7}}]},{"color":"blue","score":10,"teams":[{"team":{"id":8}}]}]},` +
				`{"id":2,"round":6,"instance":1,"matchnum":1,"alliances":[` +
				`{"color":"blue","score":55,"teams":[{"team":{"id":7}}]},{"color":"red","score":60,"teams":[{"team":{"id":9}}]}]}`),
		"/events/100/skills": page(`{"type":"driver","score":30,"attempts":2,"team":{"id":7}},` +
			`{"type":"programming","score":20,"attempts":1,"team":{"id":7}}`),
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/teams" && r.URL.Query().Get("number") != "1234A" {
			_, _ = w.Write([]byte(`{"meta":{"current_page":1,"last_page":1},"data":[]}`))
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
}

func execute(stdin string, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestReportCommand(t *testing.T) {
	convey.Convey("Given a fake RobotEvents API", t, func() {
		srv := fakeAPI(t)
		defer srv.Close()
		dir := t.TempDir()
		_ = os.Unsetenv("ROBOSCOUT_CONFIG")

		convey.Convey("When the report runs with every input given as flags", func() {
			out, _, err := execute("",
				"report",
				"--base-url", srv.URL,
				"--token", "tok",
				"--season", "191",
				"--teams", "1234a, 9999Z",
				"--sort", "best_qual",
				"--output-dir", dir,
				"--no-prompt",
				"--run-id", "season-191-scout",
			)

			convey.Convey("Then the found team is written to both report files", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Teams sorted by best qualification score")
				convey.So(out, convey.ShouldContainSubstring, "1234A")
				convey.So(out, convey.ShouldNotContainSubstring, "9999Z")
				convey.So(out, convey.ShouldContainSubstring, "Run ID: season-191-scout")

				csvFiles, _ := filepath.Glob(filepath.Join(dir, "robotics_teams_*.csv"))
				convey.So(csvFiles, convey.ShouldHaveLength, 1)
				f, err := os.Open(csvFiles[0])
				convey.So(err, convey.ShouldBeNil)
				defer f.Close()
				rows, err := report.ReadCSV(f)
				convey.So(err, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 1)
				convey.So(rows[0].Team, convey.ShouldEqual, "1234A")
				convey.So(rows[0].BestQual, convey.ShouldEqual, 42)
				convey.So(rows[0].SkillAvg, convey.ShouldEqual, 50.0)
				convey.So(rows[0].BestEvent, convey.ShouldEqual, "Kickoff Classic")

				txtFiles, _ := filepath.Glob(filepath.Join(dir, "robotics_teams_*.txt"))
				convey.So(txtFiles, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When inputs are answered interactively", func() {
			out, _, err := execute("tok\n191\n1234A\n2\n",
				"--base-url", srv.URL,
				"--output-dir", dir,
			)

			convey.Convey("Then the prompts drive the run", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Enter your RobotEvents API key")
				convey.So(out, convey.ShouldContainSubstring, "Teams sorted by qualification average")
			})
		})

		convey.Convey("When prompting is disabled and the season is missing", func() {
			_, _, err := execute("", "report", "--base-url", srv.URL, "--teams", "1234A", "--no-prompt", "--output-dir", dir)

			convey.Convey("Then the command fails without contacting the API", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "--season")
			})
		})

		convey.Convey("When no team resolves", func() {
			out, _, err := execute("", "report", "--base-url", srv.URL, "--token", "t", "--season", "191",
				"--teams", "0000X", "--sort", "skill_avg", "--output-dir", dir)

			convey.Convey("Then no files are written", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "No team data was retrieved.")
				files, _ := filepath.Glob(filepath.Join(dir, "*"))
				convey.So(files, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When a flag value is invalid", func() {
			_, _, err := execute("", "report", "--round-policy", "triple", "--no-prompt")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "round_policy")
		})
	})
}

func TestExploreCommand(t *testing.T) {
	convey.Convey("Given a fake RobotEvents API", t, func() {
		srv := fakeAPI(t)
		defer srv.Close()
		dir := t.TempDir()

		convey.Convey("When exploring a team's events with save", func() {
			var out, errOut bytes.Buffer
			root := newRootCmd(strings.NewReader(""), &out, &errOut)
			root.SetArgs([]string{"explore", "team-events", "--id", "7", "--filter", "season=191",
				"--save", "--output-dir", dir, "--base-url", srv.URL, "--token", "t"})
			err := root.ExecuteContext(context.Background())

			convey.Convey("Then the structure is printed and saved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "Exploring endpoint: teams/7/events")
				convey.So(out.String(), convey.ShouldContainSubstring, "sku: string")
				saved, _ := filepath.Glob(filepath.Join(dir, "teams_7_events_season_191_*.json"))
				convey.So(saved, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When the endpoint needs an id", func() {
			_, _, err := execute("", "explore", "matches", "--base-url", srv.URL, "--token", "t")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "requires an id")
		})
	})
}
