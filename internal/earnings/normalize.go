package earnings

import (
	"time"
	_ "time/tzdata"
)

// EasternZone is the IANA name of US Eastern Time.
const EasternZone = "America/New_York"

// Eastern loads US Eastern Time from the embedded tz database.
func Eastern() *time.Location {
	loc, err := time.LoadLocation(EasternZone)
	if err != nil {
		// unreachable with time/tzdata linked in
		panic(err)
	}
	return loc
}

// Normalizer converts extracted timestamps to the target zone. Offsets come
// from the zone rules for each date, so EST and EDT are both handled.
type Normalizer struct {
	source *time.Location
	target *time.Location
}

// NewNormalizer reads naive values in source and converts to target. Nil
// locations default to Eastern.
func NewNormalizer(source, target *time.Location) *Normalizer {
	if source == nil {
		source = Eastern()
	}
	if target == nil {
		target = Eastern()
	}
	return &Normalizer{source: source, target: target}
}

// Target returns the output zone.
func (n *Normalizer) Target() *time.Location {
	return n.target
}

// Normalize never invents a time of day: date-only input keeps its calendar
// date and comes back with HasTime false.
func (n *Normalizer) Normalize(raw RawTime) EarningsTime {
	switch {
	case raw.DateOnly:
		y, m, d := raw.Time.Date()
		return EarningsTime{Time: time.Date(y, m, d, 0, 0, 0, 0, n.target)}
	case raw.Naive:
		y, m, d := raw.Time.Date()
		hh, mm, ss := raw.Time.Clock()
		local := time.Date(y, m, d, hh, mm, ss, raw.Time.Nanosecond(), n.source)
		return EarningsTime{Time: local.In(n.target), HasTime: true}
	default:
		return EarningsTime{Time: raw.Time.In(n.target), HasTime: true}
	}
}
