// Package roadmap drives the staged "generation" sequence shown before a
// roadmap is revealed. Nothing is generated: the steps only pace the reveal.
package roadmap

import (
	"context"
	"math"
	"time"
)

var (
	premiumSteps = []string{
		"🤖 AI analyzing your background and goals...",
		"📊 Processing 50,000+ job postings for personalized insights...",
		"🎯 Identifying skills gaps specific to your profile...",
		"⚡ Creating hyper-personalized learning path...",
		"🚀 Optimizing roadmap for your career goals...",
		"✨ Finalizing your AI-powered transformation plan...",
	}
	freeSteps = []string{
		"🤖 Generating basic roadmap...",
		"📊 Analyzing general market trends...",
		"🎯 Creating standard learning path...",
		"⚡ Preparing generic roadmap...",
		"🚀 Almost ready...",
	}
)

// Timing configures the pace of a Plan.
type Timing struct {
	StepInterval        time.Duration
	PremiumStepInterval time.Duration
	RevealDelay         time.Duration
}

// DefaultTiming paces free plans at 1.5s, premium plans at 2s per step.
var DefaultTiming = Timing{
	StepInterval:        1500 * time.Millisecond,
	PremiumStepInterval: 2000 * time.Millisecond,
	RevealDelay:         1000 * time.Millisecond,
}

type Plan struct {
	Premium     bool
	Steps       []string
	Interval    time.Duration
	RevealDelay time.Duration
}

// NewPlan builds the sequence for a learner. Non-positive intervals fall back to DefaultTiming.
func NewPlan(premium bool, timing Timing) Plan {
	if timing.RevealDelay < 0 {
		timing.RevealDelay = 0
	}
	if premium {
		return Plan{Premium: true, Steps: premiumSteps, Interval: orDefault(timing.PremiumStepInterval, DefaultTiming.PremiumStepInterval), RevealDelay: timing.RevealDelay}
	}
	return Plan{Steps: freeSteps, Interval: orDefault(timing.StepInterval, DefaultTiming.StepInterval), RevealDelay: timing.RevealDelay}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Progress is one point of the sequence. Step is 1-based; Done marks the reveal.
type Progress struct {
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Label   string `json:"label"`
	Percent int    `json:"percent"`
	Done    bool   `json:"done"`
}

// Progress returns the state after step steps, clamped to [1, len(Steps)].
func (p Plan) Progress(step int) Progress {
	total := len(p.Steps)
	if total == 0 {
		return Progress{Percent: 100}
	}
	if step < 1 {
		step = 1
	}
	if step > total {
		step = total
	}
	return Progress{
		Step:    step,
		Total:   total,
		Label:   p.Steps[step-1],
		Percent: int(math.Round(float64(step) / float64(total) * 100)),
	}
}

// Duration is the time from start to reveal.
func (p Plan) Duration() time.Duration {
	return time.Duration(len(p.Steps))*p.Interval + p.RevealDelay
}

// Run emits the first step right away, then one step per Interval. One Interval
// after the last step, and RevealDelay later, it emits the final Done progress.
// Cancelling ctx stops the sequence and releases its timers.
func (p Plan) Run(ctx context.Context, emit func(Progress) error) error {
	total := len(p.Steps)
	if total == 0 {
		return emit(Progress{Done: true, Percent: 100})
	}

	ticker := time.NewTicker(orDefault(p.Interval, DefaultTiming.StepInterval))
	defer ticker.Stop()

	step := 1
	if err := emit(p.Progress(step)); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if step == total {
			break
		}
		step++
		if err := emit(p.Progress(step)); err != nil {
			return err
		}
	}
	ticker.Stop()

	reveal := time.NewTimer(p.RevealDelay)
	defer reveal.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-reveal.C:
	}

	done := p.Progress(total)
	done.Done = true
	return emit(done)
}
