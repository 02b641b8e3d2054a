package explore_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/roboscout/internal/adapters/robotevents"
	"github.com/okian/roboscout/internal/domain/model"
	"github.com/okian/roboscout/internal/explore"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeGetter struct {
	body   string
	reason model.FetchReason
	err    error
	path   string
	query  url.Values
}

func (f *fakeGetter) Get(_ context.Context, path string, query url.Values) ([]byte, model.FetchReason, error) {
	f.path = path
	f.query = query
	return []byte(f.body), f.reason, f.err
}

const eventsPage = `{
  "meta": {"total": 2, "per_page": 25, "current_page": 1, "last_page": 1, "first_page_url": "x"},
  "data": [
    {"id": 51488, "sku": "RE-VRC-23-1488", "name": "Signature",
     "location": {"city": "Dallas", "coordinates": {"lat": 1, "lon": 2}},
     "divisions": [{"id": 1, "name": "Div 1"}], "ongoing": false}
  ]
}`

func TestExplore(t *testing.T) {
	Convey("Given an explorer over a fake getter", t, func() {
		getter := &fakeGetter{body: eventsPage, reason: model.FetchOK}
		var out bytes.Buffer
		dir := t.TempDir()
		ex := explore.New(getter, &out, dir).WithClock(func() time.Time {
			return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
		})
		ctx := context.Background()

		Convey("When listing events with filters", func() {
			sum, err := ex.Explore(ctx, explore.Request{
				Endpoint: "events",
				Filters:  map[string]string{"program": "1", "season": "181", "team": "ignored"},
			})

			Convey("Then only the endpoint's filters are sent", func() {
				So(err, ShouldBeNil)
				So(getter.path, ShouldEqual, "/events")
				So(getter.query.Get("program"), ShouldEqual, "1")
				So(getter.query.Get("season"), ShouldEqual, "181")
				So(getter.query.Has("team"), ShouldBeFalse)
			})

			Convey("Then meta and the first item's keys are reported", func() {
				So(sum.Items, ShouldEqual, 1)
				So(sum.Meta["total"], ShouldEqual, float64(2))
				So(sum.FirstKeys, ShouldResemble, []string{"divisions", "id", "location", "name", "ongoing", "sku"})
				text := out.String()
				So(text, ShouldContainSubstring, "total: 2")
				So(text, ShouldContainSubstring, "last page: 1")
				So(text, ShouldContainSubstring, "  coordinates:\n    lat: number")
				So(text, ShouldContainSubstring, "id: number")
				So(text, ShouldContainSubstring, "ongoing: bool")
			})
		})

		Convey("When an id endpoint is missing its id", func() {
			_, err := ex.Explore(ctx, explore.Request{Endpoint: "matches"})
			So(errors.Is(err, explore.ErrMissingID), ShouldBeTrue)
			So(getter.path, ShouldBeEmpty)
		})

		Convey("When the endpoint is unknown", func() {
			_, err := ex.Explore(ctx, explore.Request{Endpoint: "nope"})
			So(errors.Is(err, explore.ErrUnknownEndpoint), ShouldBeTrue)
		})

		Convey("When the resource is not found", func() {
			getter.reason = model.FetchNotFound
			_, err := ex.Explore(ctx, explore.Request{Endpoint: "event", ID: "9"})
			So(errors.Is(err, explore.ErrNoResponse), ShouldBeTrue)
			So(getter.path, ShouldEqual, "/events/9")
			So(out.String(), ShouldContainSubstring, "No response received")
		})

		Convey("When the id carries path separators", func() {
			_, err := ex.Explore(ctx, explore.Request{Endpoint: "matches", ID: "../teams/1 2"})
			So(err, ShouldBeNil)
			So(getter.path, ShouldEqual, "/events/..%2Fteams%2F1%202/matches")
		})

		Convey("When saving a response", func() {
			sum, err := ex.Explore(ctx, explore.Request{
				Endpoint: "matches",
				ID:       "51488",
				Filters:  map[string]string{"round": "2"},
				Save:     true,
			})
			So(err, ShouldBeNil)
			So(sum.SavedTo, ShouldEqual, filepath.Join(dir, "events_51488_matches_round_2_20240203_040506.json"))
			saved, err := os.ReadFile(sum.SavedTo)
			So(err, ShouldBeNil)
			So(string(saved), ShouldContainSubstring, `"sku": "RE-VRC-23-1488"`)
		})
	})
}

func TestExploreThroughClient(t *testing.T) {
	Convey("Given a live API double", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/teams/42" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{"id": 42, "number": "1234A", "program": {"id": 1, "code": "VRC"}}`))
		}))
		defer srv.Close()

		client := robotevents.New(robotevents.WithBaseURL(srv.URL), robotevents.WithMaxAttempts(1))
		var out bytes.Buffer
		ex := explore.New(client, &out, t.TempDir())

		Convey("Then a single resource is described without meta", func() {
			sum, err := ex.Explore(context.Background(), explore.Request{Endpoint: "team", ID: "42"})
			So(err, ShouldBeNil)
			So(sum.Meta, ShouldBeNil)
			So(sum.FirstKeys, ShouldResemble, []string{"id", "number", "program"})
			So(strings.Contains(out.String(), "  code: string"), ShouldBeTrue)
		})
	})
}

func TestEndpoints(t *testing.T) {
	Convey("Endpoints are sorted and described", t, func() {
		names := explore.Endpoints()
		So(names, ShouldContain, "team-events")
		So(names[0], ShouldEqual, "awards")
		So(len(explore.Describe()), ShouldEqual, len(names))
	})
}
