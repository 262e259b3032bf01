package jobs

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caradmin/internal/pkg/slogx"
)

func TestAdd(t *testing.T) {
	s := NewScheduler(slogx.Discard())

	require.NoError(t, s.Add("cleanup", "@every 1h", func() error { return nil }))
	require.NoError(t, s.Add("feed", "", func() error { return nil }))
	assert.Equal(t, 1, s.Len())

	err := s.Add("broken", "every now and then", func() error { return nil })
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestWrap_RunsAndSurvivesErrors(t *testing.T) {
	s := NewScheduler(slogx.Discard())
	var runs atomic.Int32

	s.wrap("ok", func() error { runs.Add(1); return nil })()
	s.wrap("bad", func() error { runs.Add(1); return errors.New("boom") })()
	assert.Equal(t, int32(2), runs.Load())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(slogx.Discard())
	done := make(chan struct{}, 1)
	require.NoError(t, s.Add("tick", "@every 1s", func() error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	}))

	s.Start()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
	s.Stop()
}
