package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminders struct {
	calls int
	at    time.Time
	err   error
}

func (f *fakeReminders) CreateDailyReminders(now time.Time) (int, error) {
	f.calls++
	f.at = now
	return 3, f.err
}

func TestRunDailyRemindersUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	fake := &fakeReminders{}
	s := New(fake, loc)

	s.RunDailyReminders()

	require.Equal(t, 1, fake.calls)
	assert.Equal(t, loc, fake.at.Location())
}

func TestRunDailyRemindersSwallowsErrors(t *testing.T) {
	fake := &fakeReminders{err: errors.New("boom")}
	s := New(fake, time.UTC)

	assert.NotPanics(t, s.RunDailyReminders)
	assert.Equal(t, 1, fake.calls)
}

func TestStartRejectsInvalidHour(t *testing.T) {
	s := New(&fakeReminders{}, time.UTC)
	assert.Error(t, s.Start(24))
	assert.Error(t, s.Start(-1))
}

func TestStartAndStop(t *testing.T) {
	s := New(&fakeReminders{}, time.UTC)
	require.NoError(t, s.Start(20))
	s.Stop()
}
