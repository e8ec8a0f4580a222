package appointment

import (
	"fmt"
	"time"
)

// SchedulePolicy decides whether a wall-clock visiting time is bookable
// on a given date. Two policies ship because the product has not settled
// which one is authoritative; config selects the active one.
type SchedulePolicy interface {
	Name() string
	Allows(date time.Time, clock Clock) bool
	Description() string
}

// Clock is a wall-clock minute of day parsed from "HH:MM".
type Clock struct {
	Hour   int
	Minute int
}

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) minutes() int { return c.Hour*60 + c.Minute }

type window struct {
	start Clock
	end   Clock
}

func (w window) contains(c Clock) bool {
	return w.start.minutes() <= c.minutes() && c.minutes() <= w.end.minutes()
}

var (
	morning        = window{Clock{11, 0}, Clock{13, 0}}
	evening        = window{Clock{17, 0}, Clock{20, 0}}
	weekendMorning = window{Clock{8, 0}, Clock{13, 0}}
)

// uniformPolicy applies the same windows every day of the week.
type uniformPolicy struct{}

func (uniformPolicy) Name() string { return "uniform" }

func (uniformPolicy) Allows(_ time.Time, c Clock) bool {
	return morning.contains(c) || evening.contains(c)
}

func (uniformPolicy) Description() string {
	return "appointment time must be within 11:00-13:00 or 17:00-20:00"
}

// weekendExtendedPolicy opens the morning window earlier on Saturday and
// Sunday.
type weekendExtendedPolicy struct{}

func (weekendExtendedPolicy) Name() string { return "weekend_extended" }

func (weekendExtendedPolicy) Allows(date time.Time, c Clock) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return weekendMorning.contains(c) || evening.contains(c)
	default:
		return morning.contains(c) || evening.contains(c)
	}
}

func (weekendExtendedPolicy) Description() string {
	return "appointment time must be within 11:00-13:00 (08:00-13:00 on weekends) or 17:00-20:00"
}

// PolicyByName resolves a configured policy name, defaulting to uniform.
func PolicyByName(name string) SchedulePolicy {
	if name == "weekend_extended" {
		return weekendExtendedPolicy{}
	}
	return uniformPolicy{}
}
