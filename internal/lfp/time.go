package lfp

import (
	"fmt"
	"strconv"
	"time"

	"github.com/floodlink-io/floodlink/pkg/bmi"
)

// TimeUnits returns the fixed unit of all time offsets exchanged with the
// engine.
func (m *LFP) TimeUnits() string { return "seconds" }

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// StartTime derives the model start from the refdate attribute plus, once
// the model is initialized, the engine's reported start offset. The result
// is cached as the time origin for all offset arithmetic.
func (m *LFP) StartTime() (time.Time, error) {
	refdate, err := m.AttributeValue("refdate")
	if err != nil {
		return time.Time{}, err
	}
	ref, err := time.Parse(dateFormat, refdate)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad refdate %q: %w", refdate, bmi.ErrInvalidTimeFormat)
	}
	offset := 0.0
	if m.phase == phaseInitialized {
		offset = m.eng.StartTime()
	}
	m.start = ref.Add(seconds(offset))
	return m.start, nil
}

// CurrentTime returns the start time plus the engine's current offset, or
// the start time itself before model initialization.
func (m *LFP) CurrentTime() (time.Time, error) {
	if m.phase == phaseInitialized {
		return m.start.Add(seconds(m.eng.CurrentTime())), nil
	}
	return m.StartTime()
}

// EndTime returns the model end time: start plus the engine's reported
// end offset once initialized, else start plus the sim_time attribute.
// The post-initialization engine value is best-effort; LISFlood-FP is
// known to report it unreliably after startup.
func (m *LFP) EndTime() (time.Time, error) {
	var stop float64
	if m.phase == phaseInitialized {
		stop = m.eng.EndTime()
	} else {
		s, err := m.AttributeValue("sim_time")
		if err != nil {
			return time.Time{}, err
		}
		stop, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad sim_time %q: %w", s, err)
		}
	}
	start, err := m.StartTime()
	if err != nil {
		return time.Time{}, err
	}
	m.end = start.Add(seconds(stop))
	return m.end, nil
}

// TimeStep returns the model timestep in seconds: the engine's live value
// once initialized (authoritative, may change call to call), else the
// initial_tstep attribute. The last-known value is cached for Update.
func (m *LFP) TimeStep() (float64, error) {
	var dt float64
	if m.phase == phaseInitialized {
		dt = m.eng.TimeStep()
	} else {
		s, err := m.AttributeValue("initial_tstep")
		if err != nil {
			return 0, err
		}
		dt, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("bad initial_tstep %q: %w", s, err)
		}
	}
	m.dt = seconds(dt)
	return dt, nil
}

// Update advances the model by dt seconds, or by the last-known model
// timestep when dt <= 0 or dt equals that timestep. The engine's native
// step is adaptive and may be smaller than the requested duration, so the
// engine is stepped repeatedly until the target time is reached; one
// Update call is never assumed to be one native step.
func (m *LFP) Update(dt float64) error {
	if m.config == nil {
		return bmi.ErrNotConfigured
	}
	if !m.cur.Before(m.end) {
		return fmt.Errorf("cannot update at %s: %w", m.cur.Format(time.DateTime), bmi.ErrAlreadyFinished)
	}
	step := m.dt
	if dt > 0 && dt != m.dt.Seconds() {
		// the adaptive scheme makes a divisibility check against the
		// model timestep meaningless, so the requested value is taken
		// as-is
		step = seconds(dt)
	}
	cur, err := m.CurrentTime()
	if err != nil {
		return err
	}
	target := cur.Add(step)
	iters := 0
	for m.cur.Before(target) {
		if err := m.eng.Update(); err != nil {
			return fmt.Errorf("engine update failed: %w", err)
		}
		if m.cur, err = m.CurrentTime(); err != nil {
			return err
		}
		iters++
	}
	m.lastIters = iters
	m.logger.Info("model updated",
		"time", m.cur.Format(time.DateTime),
		"iterations", iters)
	return nil
}

// LastIterations reports how many native engine steps the most recent
// Update call took.
func (m *LFP) LastIterations() int { return m.lastIters }

// UpdateUntil advances the model until t is reached. t must not precede
// the current time nor exceed the end time.
func (m *LFP) UpdateUntil(t time.Time, dt float64) error {
	if m.config == nil {
		return bmi.ErrNotConfigured
	}
	if t.Before(m.cur) || t.After(m.end) {
		return fmt.Errorf("target %s outside [%s, %s]: %w",
			t.Format(time.DateTime), m.cur.Format(time.DateTime), m.end.Format(time.DateTime),
			bmi.ErrInvalidTimeRange)
	}
	for m.cur.Before(t) {
		if err := m.Update(dt); err != nil {
			return err
		}
	}
	return nil
}

// coerceTime accepts a time.Time or a YYYY-MM-DD string.
func coerceTime(v any) (time.Time, error) {
	switch tv := v.(type) {
	case time.Time:
		return tv, nil
	case string:
		t, err := time.Parse(dateFormat, tv)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad date %q: %w", tv, bmi.ErrInvalidTimeFormat)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T: %w", v, bmi.ErrInvalidTimeFormat)
	}
}

// SetStartTime overrides the reference date and persists it into the
// refdate attribute, so a later WriteConfig reflects the override.
func (m *LFP) SetStartTime(v any) error {
	t, err := coerceTime(v)
	if err != nil {
		return err
	}
	if err := m.SetAttributeValue("refdate", t.Format(dateFormat)); err != nil {
		return err
	}
	m.start = t
	m.cur = t
	return nil
}

// SetEndTime overrides the end time. The value must strictly exceed the
// start time; it is persisted as sim_time, an integer count of seconds
// past the start, to match the native format.
func (m *LFP) SetEndTime(v any) error {
	t, err := coerceTime(v)
	if err != nil {
		return err
	}
	start, err := m.StartTime()
	if err != nil {
		return err
	}
	if !t.After(start) {
		return fmt.Errorf("end time %s not after start %s: %w",
			t.Format(dateFormat), start.Format(dateFormat), bmi.ErrInvalidTimeRange)
	}
	stop := strconv.FormatInt(int64(t.Sub(start)/time.Second), 10)
	if err := m.SetAttributeValue("sim_time", stop); err != nil {
		return err
	}
	m.end = t
	return nil
}
