package roadmap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fastTiming = Timing{
	StepInterval:        time.Millisecond,
	PremiumStepInterval: 2 * time.Millisecond,
	RevealDelay:         time.Millisecond,
}

func TestNewPlan(t *testing.T) {
	free := NewPlan(false, DefaultTiming)
	assert.Len(t, free.Steps, 5)
	assert.Equal(t, 1500*time.Millisecond, free.Interval)
	assert.Equal(t, "🤖 Generating basic roadmap...", free.Steps[0])
	assert.Equal(t, 8500*time.Millisecond, free.Duration())

	premium := NewPlan(true, DefaultTiming)
	assert.Len(t, premium.Steps, 6)
	assert.Equal(t, 2000*time.Millisecond, premium.Interval)
	assert.Equal(t, "✨ Finalizing your AI-powered transformation plan...", premium.Steps[5])
	assert.Equal(t, 13*time.Second, premium.Duration())
}

func TestNewPlan_nonPositiveTiming(t *testing.T) {
	free := NewPlan(false, Timing{RevealDelay: -time.Second})
	assert.Equal(t, DefaultTiming.StepInterval, free.Interval)
	assert.Zero(t, free.RevealDelay)

	premium := NewPlan(true, Timing{PremiumStepInterval: -time.Millisecond})
	assert.Equal(t, DefaultTiming.PremiumStepInterval, premium.Interval)
}

func TestPlan_Run_zeroInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	plan := Plan{Steps: freeSteps}
	var emitted int
	err := plan.Run(ctx, func(Progress) error {
		emitted++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, emitted)
}

func TestPlan_Progress(t *testing.T) {
	p := NewPlan(true, DefaultTiming)
	tests := []struct {
		step        int
		wantStep    int
		wantPercent int
	}{
		{step: 0, wantStep: 1, wantPercent: 17},
		{step: 1, wantStep: 1, wantPercent: 17},
		{step: 3, wantStep: 3, wantPercent: 50},
		{step: 6, wantStep: 6, wantPercent: 100},
		{step: 9, wantStep: 6, wantPercent: 100},
	}
	for _, tt := range tests {
		got := p.Progress(tt.step)
		assert.Equal(t, tt.wantStep, got.Step)
		assert.Equal(t, tt.wantPercent, got.Percent)
		assert.Equal(t, 6, got.Total)
		assert.False(t, got.Done)
	}

	assert.Equal(t, Progress{Percent: 100}, Plan{}.Progress(1))
}

func TestPlan_Run(t *testing.T) {
	for _, premium := range []bool{false, true} {
		plan := NewPlan(premium, fastTiming)
		var got []Progress
		err := plan.Run(context.Background(), func(p Progress) error {
			got = append(got, p)
			return nil
		})
		require.NoError(t, err)

		n := len(plan.Steps)
		require.Len(t, got, n+1, "one emission per step plus the reveal")
		for i := 0; i < n; i++ {
			assert.Equal(t, i+1, got[i].Step)
			assert.Equal(t, plan.Steps[i], got[i].Label)
			assert.False(t, got[i].Done)
		}
		assert.Equal(t, 100, got[n-1].Percent)
		last := got[n]
		assert.True(t, last.Done)
		assert.Equal(t, 100, last.Percent)
		assert.Equal(t, n, last.Step)
	}
}

func TestPlan_Run_cancel(t *testing.T) {
	plan := NewPlan(true, Timing{PremiumStepInterval: time.Hour, RevealDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	var emitted int
	errc := make(chan error, 1)
	go func() {
		errc <- plan.Run(ctx, func(Progress) error {
			emitted++
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop on cancel")
	}
	assert.Equal(t, 1, emitted)
}

func TestPlan_Run_emitError(t *testing.T) {
	boom := errors.New("client gone")
	plan := NewPlan(false, fastTiming)
	var calls int
	err := plan.Run(context.Background(), func(Progress) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 2, calls)
}

func TestPlan_Run_empty(t *testing.T) {
	var got []Progress
	require.NoError(t, Plan{}.Run(context.Background(), func(p Progress) error {
		got = append(got, p)
		return nil
	}))
	assert.Equal(t, []Progress{{Done: true, Percent: 100}}, got)
}
