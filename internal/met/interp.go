package met

import (
	"fmt"
	"sort"
	"time"
)

// OutOfDomainError reports a target time outside the span of the available
// observations. Matching a measurement to a time the station never covered
// would silently fabricate data, so callers must decide what to do.
type OutOfDomainError struct {
	Target time.Time
	First  time.Time
	Last   time.Time
}

func (e *OutOfDomainError) Error() string {
	return fmt.Sprintf("target time %s is outside the observed span [%s, %s]",
		e.Target.Format(TimeLayout), e.First.Format(TimeLayout), e.Last.Format(TimeLayout))
}

// InterpolateTo matches observations to each target time by nearest sample.
// Pressure comes from the nearest observation outright; temperature and
// humidity come from the nearest observation that actually provides them,
// so a sensor dropping out for a stretch does not poison its neighbors.
// Targets outside [first, last] observation return an OutOfDomainError.
// The result has one observation per target, stamped with the target time.
func InterpolateTo(obs []Observation, targets []time.Time) ([]Observation, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("no observations to interpolate from")
	}

	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	first := sorted[0].Time
	last := sorted[len(sorted)-1].Time

	out := make([]Observation, 0, len(targets))
	for _, target := range targets {
		if target.Before(first) || target.After(last) {
			return nil, &OutOfDomainError{Target: target, First: first, Last: last}
		}

		o := Observation{
			Time:     target,
			Pressure: nearest(sorted, target, func(Observation) bool { return true }).Pressure,
		}
		if n := nearest(sorted, target, func(s Observation) bool { return s.Temperature != nil }); n != nil {
			v := *n.Temperature
			o.Temperature = &v
		}
		if n := nearest(sorted, target, func(s Observation) bool { return s.Humidity != nil }); n != nil {
			v := *n.Humidity
			o.Humidity = &v
		}
		out = append(out, o)
	}

	return out, nil
}

// nearest returns the observation closest in time to target among those
// satisfying ok, or nil when none qualify. Ties go to the earlier sample.
func nearest(sorted []Observation, target time.Time, ok func(Observation) bool) *Observation {
	var best *Observation
	var bestDist time.Duration
	for i := range sorted {
		if !ok(sorted[i]) {
			continue
		}
		d := absDuration(target.Sub(sorted[i].Time))
		if best == nil || d < bestDist {
			best = &sorted[i]
			bestDist = d
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
