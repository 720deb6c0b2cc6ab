// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "time"

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	var interval time.Duration
	if cfg.PollsPerSecond <= 0 {
		interval = time.Nanosecond
	} else {
		interval = time.Second / time.Duration(cfg.PollsPerSecond)
	}

	return &Time{
		pps:        cfg.PollsPerSecond,
		interval:   interval,
		pollTicker: time.NewTicker(interval),
	}
}

// Time paces the event poll loop
type Time struct {
	pps        int
	interval   time.Duration
	pollTicker *time.Ticker
}

// PollsPerSecond gets the configured polling rate
func (t *Time) PollsPerSecond() int {
	return t.pps
}

// Interval is the time between two polls
func (t *Time) Interval() time.Duration {
	return t.interval
}

// PollTicker gets the initialized poll ticker
func (t *Time) PollTicker() *time.Ticker {
	return t.pollTicker
}

// Stop stops the tickers
func (t *Time) Stop() {
	t.pollTicker.Stop()
}
