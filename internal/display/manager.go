package display

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Commander runs the DDC-CI utility and returns its trimmed stdout.
// Satisfied by *process.Runner.
type Commander interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// OutOfRangeError reports a value (or computed value) outside [0, max]
// for a bounded property. The mutating command is never issued.
type OutOfRangeError struct {
	Property Property
	Value    int
	Max      int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s value %d out of range [0, %d]", e.Property, e.Value, e.Max)
}

// ParseError reports that the utility returned no usable numeric value.
// This happens legitimately right after an input switch, while the
// monitor is not yet answering DDC-CI queries.
type ParseError struct {
	Property Property
	Raw      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable %s value %q", e.Property, e.Raw)
}

// One display per line: [<number>] <name> (<id>). The utility also emits
// banner and diagnostic lines, which do not match and are skipped.
var displayLine = regexp.MustCompile(`^\[(\d+)\]\s+(.+?)\s+\(([\w-]+)\)$`)

// Manager exposes typed, bounds-checked operations over the utility's
// text-based subcommands.
type Manager struct {
	runner Commander
	log    *zap.Logger
}

func NewManager(runner Commander, log *zap.Logger) *Manager {
	return &Manager{runner: runner, log: log}
}

// List enumerates the displays the utility can see. Zero displays is a
// valid (empty) result, not an error; callers decide whether that is
// terminal.
func (m *Manager) List(ctx context.Context) ([]Display, error) {
	out, err := m.runner.Run(ctx, "display", "list")
	if err != nil {
		return nil, fmt.Errorf("list displays: %w", err)
	}

	var displays []Display
	for _, line := range strings.Split(out, "\n") {
		match := displayLine.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		displays = append(displays, Display{
			Number: number,
			Name:   match[2],
			ID:     match[3],
		})
	}
	return displays, nil
}

// Find resolves a display by ID (exact), number, or name substring
// (case-insensitive), in that order.
func (m *Manager) Find(ctx context.Context, query string) (*Display, error) {
	displays, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range displays {
		if displays[i].ID == query {
			return &displays[i], nil
		}
	}

	if number, err := strconv.Atoi(query); err == nil {
		for i := range displays {
			if displays[i].Number == number {
				return &displays[i], nil
			}
		}
	}

	query = strings.ToLower(query)
	for i := range displays {
		if strings.Contains(strings.ToLower(displays[i].Name), query) {
			return &displays[i], nil
		}
	}

	return nil, fmt.Errorf("display not found: %s", query)
}

// Get returns the raw textual value of a property. No numeric form is
// guaranteed; input in particular reports device-specific codes.
func (m *Manager) Get(ctx context.Context, id string, prop Property) (string, error) {
	out, err := m.runner.Run(ctx, "display", id, "get", string(prop))
	if err != nil {
		return "", fmt.Errorf("get %s: %w", prop, err)
	}
	return out, nil
}

// Max returns the maximum value the monitor accepts for a bounded
// property. A non-numeric response yields *ParseError.
func (m *Manager) Max(ctx context.Context, id string, prop Property) (int, error) {
	if !prop.HasMax() {
		return 0, fmt.Errorf("property %s has no maximum", prop)
	}
	out, err := m.runner.Run(ctx, "display", id, "max", string(prop))
	if err != nil {
		return 0, fmt.Errorf("max %s: %w", prop, err)
	}
	max, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, &ParseError{Property: prop, Raw: out}
	}
	return max, nil
}

// Set writes an absolute property value. For bounded properties the
// monitor's maximum is queried first and a value outside [0, max] returns
// *OutOfRangeError without touching the display.
func (m *Manager) Set(ctx context.Context, id string, prop Property, value int) error {
	if prop.HasMax() {
		max, err := m.Max(ctx, id, prop)
		if err != nil {
			return err
		}
		if value < 0 || value > max {
			return &OutOfRangeError{Property: prop, Value: value, Max: max}
		}
	}
	if _, err := m.runner.Run(ctx, "display", id, "set", string(prop), strconv.Itoa(value)); err != nil {
		return fmt.Errorf("set %s: %w", prop, err)
	}
	return nil
}

// SetInput switches the display to the given input source. Input has no
// queryable maximum, so no bound check applies.
func (m *Manager) SetInput(ctx context.Context, id string, src InputSource) error {
	return m.Set(ctx, id, Input, int(src))
}

// SetMute mutes or unmutes the display's speakers.
func (m *Manager) SetMute(ctx context.Context, id string, muted bool) error {
	state := "off"
	if muted {
		state = "on"
	}
	if _, err := m.runner.Run(ctx, "display", id, "set", string(Mute), state); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	return nil
}

// Change adjusts a bounded property by delta using the utility's relative
// "chg" verb, which preserves any device-side ramping an absolute set
// would skip.
//
// Soft-fail policy: if current+delta lands outside [0, max], the request
// is logged at Warn and dropped, and Change returns nil. Absolute Set
// surfaces the same violation as an error; relative adjustments are
// treated as best-effort nudges.
func (m *Manager) Change(ctx context.Context, id string, prop Property, delta int) error {
	raw, err := m.Get(ctx, id, prop)
	if err != nil {
		return err
	}
	current, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return &ParseError{Property: prop, Raw: raw}
	}
	max, err := m.Max(ctx, id, prop)
	if err != nil {
		return err
	}

	if target := current + delta; target < 0 || target > max {
		m.log.Warn("relative change out of range, dropping",
			zap.String("display", id),
			zap.String("property", string(prop)),
			zap.Int("current", current),
			zap.Int("delta", delta),
			zap.Int("max", max))
		return nil
	}

	if _, err := m.runner.Run(ctx, "display", id, "chg", string(prop), strconv.Itoa(delta)); err != nil {
		return fmt.Errorf("chg %s: %w", prop, err)
	}
	return nil
}
