package sync

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerDrivesPeriodicPolls(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on real cron ticks")
	}

	fetcher := &stubFetcher{state: map[string]interface{}{"power": true}}
	c := newTestCoordinator(fetcher, nil)

	s := NewScheduler(time.Second, time.Second, logrus.New())
	require.NoError(t, s.Add(c))
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if fetcher.callCount() >= 1 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, fetcher.callCount(), 1)
	assert.Equal(t, map[string]interface{}{"power": true}, c.CurrentState())
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(time.Minute, time.Second, logrus.New())
	s.Stop()
}
