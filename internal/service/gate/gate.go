// Package gate decides whether an ingestion run may proceed: once per day, under the daily cap.
package gate

import (
	"context"
	"fmt"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// VideoCounter counts catalog entries ingested since a point in time.
type VideoCounter interface {
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// Config holds the gate parameters.
type Config struct {
	Location   *time.Location
	TargetHour int
	DailyMax   int
}

// Gate evaluates the run window and the daily cap.
type Gate struct {
	counter  VideoCounter
	clock    Clock
	location *time.Location
	target   int
	dailyMax int
}

// New creates a Gate. A nil clock means SystemClock, a nil location means UTC.
func New(counter VideoCounter, clock Clock, cfg Config) *Gate {
	if clock == nil {
		clock = SystemClock
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Gate{
		counter:  counter,
		clock:    clock,
		location: loc,
		target:   cfg.TargetHour,
		dailyMax: cfg.DailyMax,
	}
}

// ShouldRun reports whether the local hour equals the target hour.
// Every invocation inside that hour passes; repeated runs rely on dedup and the cap.
func (g *Gate) ShouldRun() bool {
	return g.now().Hour() == g.target
}

// DayStart returns local midnight of the current day as an absolute instant.
func (g *Gate) DayStart() time.Time {
	now := g.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, g.location)
}

// RemainingToday returns how many more videos may be ingested today. It never returns a negative number;
// zero means the daily limit is reached.
func (g *Gate) RemainingToday(ctx context.Context) (int, error) {
	count, err := g.counter.CountSince(ctx, g.DayStart())
	if err != nil {
		return 0, fmt.Errorf("count today's videos: %w", err)
	}

	remaining := g.dailyMax - count
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

func (g *Gate) now() time.Time {
	return g.clock.Now().In(g.location)
}
