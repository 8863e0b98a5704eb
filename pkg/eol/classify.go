package eol

import "time"

// Status is the EOL support state of a release.
type Status int

const (
	StatusUnknown Status = iota
	StatusSupported
	StatusEndingSoon
	StatusEndOfLife
)

func (s Status) String() string {
	switch s {
	case StatusSupported:
		return "Supported"
	case StatusEndingSoon:
		return "EndingSoon"
	case StatusEndOfLife:
		return "EndOfLife"
	default:
		return "Unknown"
	}
}

// Classification is the result of matching a VM image against a vendor's
// EOL calendar. Detail carries the concrete end-of-life date when the
// release is ending soon.
type Classification struct {
	DetectedVersion string
	Status          Status
	Detail          string
}

// Label renders the classification the way report rows display it.
func (c Classification) Label() string {
	switch c.Status {
	case StatusSupported:
		return "Supported"
	case StatusEndOfLife:
		return "EOL"
	case StatusEndingSoon:
		return "Ending " + c.Detail
	default:
		return "--"
	}
}

// Classify parses the SKU for the given family and matches the normalized
// release against the calendar. It is a pure function of its inputs; the
// calendar is never mutated and now is injected for testability.
//
// A release whose EOL date equals the current date is reported as Unknown;
// the boundary day is deliberately left unresolved rather than counted as
// expired.
func Classify(family OSFamily, sku string, calendar []CycleRecord, now time.Time, lookaheadMonths int) Classification {
	version, ok := ParseVersion(family, sku)
	if !ok {
		return Classification{Status: StatusUnknown}
	}

	result := Classification{DetectedVersion: version, Status: StatusUnknown}
	today := toDay(now)
	horizon := today.AddDate(0, lookaheadMonths, 0)

	for _, cycle := range calendar {
		if cycle.Cycle != version {
			continue
		}
		eolDay := toDay(cycle.EOL.Time)
		switch {
		case eolDay.Before(today):
			result.Status = StatusEndOfLife
		case eolDay.After(today):
			if family.hasLookahead() && eolDay.Before(horizon) {
				result.Status = StatusEndingSoon
				result.Detail = cycle.EOL.String()
			} else {
				result.Status = StatusSupported
			}
		}
		// first match wins; eolDay == today keeps StatusUnknown
		break
	}
	return result
}

// toDay truncates a timestamp to its UTC calendar date.
func toDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
