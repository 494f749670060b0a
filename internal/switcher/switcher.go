package switcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pmartell/ddcswitch/internal/config"
	"github.com/pmartell/ddcswitch/internal/display"
	"github.com/pmartell/ddcswitch/internal/process"
)

// ErrNoDisplays means the utility reported zero displays; nothing can be
// controlled, so the run terminates.
var ErrNoDisplays = errors.New("no displays found")

// ErrReadinessTimeout means displays never started answering max-contrast
// queries after an input switch.
var ErrReadinessTimeout = errors.New("timed out waiting for display readiness")

// UnrecognizedInputError reports a display whose current input is neither
// HDMI nor USB-C, so swap cannot decide a direction.
type UnrecognizedInputError struct {
	DisplayID string
	Raw       string
}

func (e *UnrecognizedInputError) Error() string {
	return fmt.Sprintf("display %s reports unrecognized input %q", e.DisplayID, e.Raw)
}

// PollPolicy controls the readiness poll: how long between queries, how
// many queries before giving up, and how to sleep (injectable so tests
// run without wall-clock delays).
type PollPolicy struct {
	Interval time.Duration
	Attempts int
	Sleep    func(time.Duration)
}

// PollFromConfig builds the poll policy from the configured tuning,
// sleeping for real.
func PollFromConfig(r config.Readiness) PollPolicy {
	return PollPolicy{
		Interval: r.Interval.Std(),
		Attempts: r.Attempts,
		Sleep:    time.Sleep,
	}
}

// Switcher sequences one control run over all detected displays. Fully
// sequential: one display, one property, one subprocess at a time.
type Switcher struct {
	displays *display.Manager
	poll     PollPolicy
	log      *zap.Logger
}

func New(displays *display.Manager, poll PollPolicy, log *zap.Logger) *Switcher {
	if poll.Sleep == nil {
		poll.Sleep = time.Sleep
	}
	return &Switcher{displays: displays, poll: poll, log: log}
}

// Apply drives every detected display to the profile's input and
// contrast. The input switch knocks monitors off the DDC-CI bus for a
// moment, so contrast is only applied after the readiness poll sees the
// first display answering again.
func (s *Switcher) Apply(ctx context.Context, profile config.Profile) error {
	displays, err := s.displays.List(ctx)
	if err != nil {
		return err
	}
	if len(displays) == 0 {
		return ErrNoDisplays
	}
	s.log.Debug("found displays", zap.Int("count", len(displays)))

	for _, d := range displays {
		s.log.Debug("setting input",
			zap.Int("display", d.Number),
			zap.Stringer("input", profile.Input))
		if err := s.displays.SetInput(ctx, d.ID, profile.Input); err != nil {
			return err
		}
	}

	if err := s.awaitReady(ctx, displays[0].ID); err != nil {
		return err
	}

	for _, d := range displays {
		s.log.Debug("setting contrast",
			zap.Int("display", d.Number),
			zap.Int("contrast", profile.Contrast))
		if err := s.displays.Set(ctx, d.ID, display.Contrast, profile.Contrast); err != nil {
			return err
		}
	}

	return nil
}

// awaitReady polls the first display's maximum contrast until it comes
// back non-zero. Right after an input switch the query returns zero,
// errors, or garbage; a real value means the monitor is listening again.
// A zero, unparseable or failed response consumes one attempt; hitting
// the ceiling is fatal.
func (s *Switcher) awaitReady(ctx context.Context, id string) error {
	for attempt := 1; attempt <= s.poll.Attempts; attempt++ {
		s.poll.Sleep(s.poll.Interval)
		s.log.Debug("checking display readiness", zap.Int("attempt", attempt))

		max, err := s.displays.Max(ctx, id, display.Contrast)
		if err != nil {
			var parseErr *display.ParseError
			var exitErr *process.ExitError
			if errors.As(err, &parseErr) || errors.As(err, &exitErr) {
				continue
			}
			return err
		}
		if max > 0 {
			s.log.Debug("display ready",
				zap.Int("attempt", attempt),
				zap.Int("max_contrast", max))
			return nil
		}
	}
	return fmt.Errorf("%w after %d attempts", ErrReadinessTimeout, s.poll.Attempts)
}

// Swap toggles every display between HDMI and USB-C based on its current
// input. Any other reported input aborts the run; guessing a direction on
// an unknown source would strand the user on a dead input. No readiness
// poll or contrast step follows.
func (s *Switcher) Swap(ctx context.Context) error {
	displays, err := s.displays.List(ctx)
	if err != nil {
		return err
	}
	if len(displays) == 0 {
		return ErrNoDisplays
	}

	for _, d := range displays {
		raw, err := s.displays.Get(ctx, d.ID, display.Input)
		if err != nil {
			return err
		}

		var target display.InputSource
		switch code, convErr := strconv.Atoi(strings.TrimSpace(raw)); {
		case convErr != nil:
			return &UnrecognizedInputError{DisplayID: d.ID, Raw: raw}
		case display.InputSource(code) == display.InputHDMI:
			target = display.InputUSBC
		case display.InputSource(code) == display.InputUSBC:
			target = display.InputHDMI
		default:
			return &UnrecognizedInputError{DisplayID: d.ID, Raw: raw}
		}

		s.log.Debug("swapping display",
			zap.Int("display", d.Number),
			zap.Stringer("to", target))
		if err := s.displays.SetInput(ctx, d.ID, target); err != nil {
			return err
		}
	}

	return nil
}
