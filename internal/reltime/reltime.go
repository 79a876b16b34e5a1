// Package reltime formats timestamps as short English phrases relative to
// the current time ("5 minutes ago", "yesterday").
package reltime

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// magnitudes buckets elapsed time by seconds, minutes, hours and days with
// strict upper bounds, so exactly 60s lands in the minutes bucket. Singular
// and idiomatic forms ("now", "yesterday") take precedence over the numeric
// phrase where one exists.
var magnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "now", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 second %s", DivBy: time.Second},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: time.Minute},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: time.Hour},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "yesterday", DivBy: humanize.Day},
	{D: math.MaxInt64, Format: "%d days %s", DivBy: humanize.Day},
}

// Format returns the phrase for t as seen at now. Timestamps after now
// (clock skew between store and client) are reported as "now".
func Format(t, now time.Time) string {
	if t.After(now) {
		t = now
	}
	return humanize.CustomRelTime(t, now, "ago", "from now", magnitudes)
}

// Since is Format relative to the wall clock.
func Since(t time.Time) string {
	return Format(t, time.Now())
}
