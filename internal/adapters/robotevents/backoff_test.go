package robotevents

import (
	"net/http"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseRetryAfter(t *testing.T) {
	Convey("Given Retry-After values", t, func() {
		now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

		Convey("When the value is delay seconds", func() {
			d, ok := parseRetryAfter("7", now)
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, 7*time.Second)
		})

		Convey("When the value is an HTTP date", func() {
			d, ok := parseRetryAfter(now.Add(30*time.Second).Format(http.TimeFormat), now)
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, 30*time.Second)
		})

		Convey("When the date is in the past", func() {
			d, ok := parseRetryAfter(now.Add(-time.Minute).Format(http.TimeFormat), now)
			So(ok, ShouldBeTrue)
			So(d, ShouldEqual, 0)
		})

		Convey("When the value is missing or junk", func() {
			_, ok := parseRetryAfter("", now)
			So(ok, ShouldBeFalse)
			_, ok = parseRetryAfter("soon", now)
			So(ok, ShouldBeFalse)
			_, ok = parseRetryAfter("-3", now)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestBackoff(t *testing.T) {
	Convey("Given a client with a 2s to 30s backoff window", t, func() {
		c := New(WithBackoff(2*time.Second, 30*time.Second))

		Convey("Then each wait stays within its capped exponential bound", func() {
			bounds := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 30 * time.Second, 30 * time.Second}
			for i, bound := range bounds {
				for n := 0; n < 50; n++ {
					d := c.backoff(i + 1)
					So(d, ShouldBeGreaterThanOrEqualTo, 0)
					So(d, ShouldBeLessThanOrEqualTo, bound)
				}
			}
		})

		Convey("Then a zero attempt does not wait", func() {
			So(c.backoff(0), ShouldEqual, 0)
		})
	})
}

func TestResourceOf(t *testing.T) {
	Convey("Given API paths", t, func() {
		So(resourceOf("/teams"), ShouldEqual, "teams")
		So(resourceOf("/teams/12/events"), ShouldEqual, "events")
		So(resourceOf("/events/5/divisions/1/matches"), ShouldEqual, "matches")
		So(resourceOf("/events/5"), ShouldEqual, "events")
		So(resourceOf("/"), ShouldEqual, "root")
	})
}
