// Package services holds the engines that operate over the stores: due
// recurrence materialization and read-side aggregation.
package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Advancer is the strategy for moving a rule's next-fire date forward by
// one period of its frequency.
type Advancer interface {
	Advance(next time.Time) time.Time
}

type weeklyAdvancer struct{}

func (weeklyAdvancer) Advance(next time.Time) time.Time {
	return next.AddDate(0, 0, 7)
}

type monthlyAdvancer struct{}

// Advance moves to the same day next calendar month, clamping when the day
// does not exist there (Jan 31 -> Feb 29 in a leap year).
func (monthlyAdvancer) Advance(next time.Time) time.Time {
	return addMonthsClamped(next, 1)
}

type yearlyAdvancer struct{}

func (yearlyAdvancer) Advance(next time.Time) time.Time {
	return addMonthsClamped(next, 12)
}

var advancers = map[core.Frequency]Advancer{
	core.Weekly:  weeklyAdvancer{},
	core.Monthly: monthlyAdvancer{},
	core.Yearly:  yearlyAdvancer{},
}

// AdvancerFor returns the advancement strategy for a frequency.
func AdvancerFor(f core.Frequency) (Advancer, error) {
	adv, ok := advancers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownFrequency, f)
	}
	return adv, nil
}

// addMonthsClamped performs calendar-safe month arithmetic. Unlike
// time.AddDate it never normalizes an overflowing day into the following
// month: the day of month is clamped to the target month's last day.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}
