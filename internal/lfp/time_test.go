package lfp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floodlink-io/floodlink/pkg/bmi"
)

func date(s string) time.Time {
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTimesFromConfig(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	start, err := m.StartTime()
	require.NoError(t, err)
	assert.Equal(t, date("2000-01-01"), start)

	cur, err := m.CurrentTime()
	require.NoError(t, err)
	assert.Equal(t, start, cur)

	// sim_time 100 s past the reference date
	end, err := m.EndTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 1, 40, 0, time.UTC), end)

	dt, err := m.TimeStep()
	require.NoError(t, err)
	assert.Equal(t, 10.0, dt)
}

func TestTimesFromEngine(t *testing.T) {
	m, eng := newConfiguredAdapter(t)
	eng.start = 50
	eng.end = 200
	eng.steps = []float64{5}
	require.NoError(t, m.InitializeModel())

	start, err := m.StartTime()
	require.NoError(t, err)
	assert.Equal(t, date("2000-01-01").Add(50*time.Second), start)

	end, err := m.EndTime()
	require.NoError(t, err)
	assert.Equal(t, start.Add(200*time.Second), end)

	dt, err := m.TimeStep()
	require.NoError(t, err)
	assert.Equal(t, 5.0, dt)
}

func TestTimeAccessBeforeConfig(t *testing.T) {
	m, _ := newTestAdapter(t)
	_, err := m.StartTime()
	assert.ErrorIs(t, err, bmi.ErrNotConfigured)
	_, err = m.EndTime()
	assert.ErrorIs(t, err, bmi.ErrNotConfigured)
	_, err = m.TimeStep()
	assert.ErrorIs(t, err, bmi.ErrNotConfigured)
}

func TestUpdateDefaultStep(t *testing.T) {
	m, eng := newConfiguredAdapter(t)
	require.NoError(t, m.InitializeModel())

	require.NoError(t, m.Update(0))
	assert.Equal(t, 1, eng.updates)

	cur, err := m.CurrentTime()
	require.NoError(t, err)
	assert.Equal(t, date("2000-01-01").Add(10*time.Second), cur)
}

func TestUpdateAdaptiveSubSteps(t *testing.T) {
	m, eng := newConfiguredAdapter(t)
	eng.steps = []float64{4} // engine steps smaller than the model dt
	require.NoError(t, m.InitializeModel())
	// last-known model timestep is 4 after init; request 10 s explicitly
	require.NoError(t, m.Update(10))

	// 3 native steps of 4 s to reach the 10 s target
	assert.Equal(t, 3, eng.updates)
	cur, err := m.CurrentTime()
	require.NoError(t, err)
	assert.Equal(t, date("2000-01-01").Add(12*time.Second), cur)
}

func TestUpdateAtEndTime(t *testing.T) {
	m, eng := newConfiguredAdapter(t)
	require.NoError(t, m.InitializeModel())
	require.NoError(t, m.UpdateUntil(date("2000-01-01").Add(100*time.Second), 0))
	assert.Equal(t, 10, eng.updates)

	err := m.Update(0)
	assert.ErrorIs(t, err, bmi.ErrAlreadyFinished)
	assert.Equal(t, 10, eng.updates, "no native steps once finished")
}

func TestUpdateUntil(t *testing.T) {
	m, eng := newConfiguredAdapter(t)
	require.NoError(t, m.InitializeModel())

	target := date("2000-01-01").Add(10 * time.Second)
	require.NoError(t, m.UpdateUntil(target, 0))

	cur, err := m.CurrentTime()
	require.NoError(t, err)
	assert.Equal(t, target, cur)
	assert.Equal(t, 1, eng.updates)
}

func TestUpdateUntilRejectsBadTargets(t *testing.T) {
	m, _ := newConfiguredAdapter(t)
	require.NoError(t, m.InitializeModel())
	require.NoError(t, m.Update(0))

	// before current time
	err := m.UpdateUntil(date("2000-01-01"), 0)
	assert.ErrorIs(t, err, bmi.ErrInvalidTimeRange)

	// past end time
	err = m.UpdateUntil(date("2000-01-02"), 0)
	assert.ErrorIs(t, err, bmi.ErrInvalidTimeRange)
}

func TestSetStartTime(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	require.NoError(t, m.SetStartTime("2010-06-01"))
	v, err := m.AttributeValue("refdate")
	require.NoError(t, err)
	assert.Equal(t, "2010-06-01", v)

	start, err := m.StartTime()
	require.NoError(t, err)
	assert.Equal(t, date("2010-06-01"), start)

	require.NoError(t, m.SetStartTime(date("2011-02-03")))
	v, err = m.AttributeValue("refdate")
	require.NoError(t, err)
	assert.Equal(t, "2011-02-03", v)
}

func TestSetStartTimeRejectsBadValues(t *testing.T) {
	m, _ := newConfiguredAdapter(t)
	assert.ErrorIs(t, m.SetStartTime("01/06/2010"), bmi.ErrInvalidTimeFormat)
	assert.ErrorIs(t, m.SetStartTime(42), bmi.ErrInvalidTimeFormat)
}

func TestSetEndTime(t *testing.T) {
	m, _ := newConfiguredAdapter(t)

	require.NoError(t, m.SetEndTime("2000-01-03"))
	v, err := m.AttributeValue("sim_time")
	require.NoError(t, err)
	assert.Equal(t, "172800", v) // two days as integer seconds

	end, err := m.EndTime()
	require.NoError(t, err)
	assert.Equal(t, date("2000-01-03"), end)
}

func TestSetEndTimeRejectsNonIncreasing(t *testing.T) {
	m, _ := newConfiguredAdapter(t)
	assert.ErrorIs(t, m.SetEndTime("2000-01-01"), bmi.ErrInvalidTimeRange)
	assert.ErrorIs(t, m.SetEndTime("1999-12-31"), bmi.ErrInvalidTimeRange)
	assert.ErrorIs(t, m.SetEndTime(3.14), bmi.ErrInvalidTimeFormat)
}
