package display

import "fmt"

// Display is one monitor as reported by the utility's list output.
// Number and Name are presentation only; ID is what every subsequent
// per-display command takes. Records are parsed fresh on every list call
// and never cached across runs.
type Display struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	ID     string `json:"id"`
}

// Property is a monitor control feature addressed by its textual name,
// exactly as the utility expects it on the command line.
type Property string

const (
	Luminance Property = "luminance"
	Contrast  Property = "contrast"
	Input     Property = "input"
	Volume    Property = "volume"
	Mute      Property = "mute"
)

// Properties lists every supported property.
func Properties() []Property {
	return []Property{Luminance, Contrast, Input, Volume, Mute}
}

// ParseProperty validates a user-supplied property name.
func ParseProperty(s string) (Property, error) {
	for _, p := range Properties() {
		if s == string(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown property %q (valid: luminance, contrast, input, volume, mute)", s)
}

// HasMax reports whether the utility can answer a maximum-value query for
// the property. Input codes and mute state have no meaningful maximum.
func (p Property) HasMax() bool {
	switch p {
	case Luminance, Contrast, Volume:
		return true
	}
	return false
}

// InputSource is a monitor input selector. The codes are protocol
// constants understood by the monitor, not values this tool invents.
type InputSource int

const (
	InputHDMI InputSource = 17
	InputUSBC InputSource = 49
)

func (s InputSource) String() string {
	switch s {
	case InputHDMI:
		return "hdmi"
	case InputUSBC:
		return "usbc"
	}
	return fmt.Sprintf("input(%d)", int(s))
}
