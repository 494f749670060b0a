package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pmartell/ddcswitch/internal/display"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <display> <property>",
		Short: "Read a display property",
		Long:  `Read the raw value of a property from one display, addressed by ID, number, or name.`,
		Example: `  ddcswitch get 1 luminance
  ddcswitch get DISP-1 input
  ddcswitch get "Dell" contrast`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			prop, err := display.ParseProperty(args[1])
			if err != nil {
				return err
			}

			mgr, err := newManager()
			if err != nil {
				return err
			}

			d, err := mgr.Find(ctx, args[0])
			if err != nil {
				return err
			}

			value, err := mgr.Get(ctx, d.ID, prop)
			if err != nil {
				return err
			}

			fmt.Println(value)
			return nil
		},
	}
}

func maxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "max <display> <property>",
		Short: "Read a property's maximum value",
		Example: `  ddcswitch max 1 contrast
  ddcswitch max DISP-1 volume`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			prop, err := display.ParseProperty(args[1])
			if err != nil {
				return err
			}

			mgr, err := newManager()
			if err != nil {
				return err
			}

			d, err := mgr.Find(ctx, args[0])
			if err != nil {
				return err
			}

			max, err := mgr.Max(ctx, d.ID, prop)
			if err != nil {
				return err
			}

			fmt.Println(max)
			return nil
		},
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <display> <property> <value>",
		Short: "Set a display property",
		Long: `Set a property to an absolute value. Bounded properties (luminance,
contrast, volume) are checked against the monitor's reported maximum
before anything is sent. Mute takes on/off; input takes a configured
input name or a raw source code.`,
		Example: `  ddcswitch set 1 luminance 80
  ddcswitch set DISP-1 input hdmi
  ddcswitch set 2 mute on`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			prop, err := display.ParseProperty(args[1])
			if err != nil {
				return err
			}

			mgr, err := newManager()
			if err != nil {
				return err
			}

			d, err := mgr.Find(ctx, args[0])
			if err != nil {
				return err
			}

			switch prop {
			case display.Mute:
				switch args[2] {
				case "on":
					return mgr.SetMute(ctx, d.ID, true)
				case "off":
					return mgr.SetMute(ctx, d.ID, false)
				default:
					return fmt.Errorf("mute takes on or off, got %q", args[2])
				}
			case display.Input:
				code, err := resolveInput(args[2])
				if err != nil {
					return err
				}
				return mgr.SetInput(ctx, d.ID, code)
			default:
				value, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("%s takes an integer value, got %q", prop, args[2])
				}
				return mgr.Set(ctx, d.ID, prop, value)
			}
		},
	}
}

func chgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chg <display> <property> <delta>",
		Short: "Adjust a display property relatively",
		Long: `Adjust a bounded property by a signed delta using the utility's
relative verb. An adjustment that would leave [0, max] is logged and
dropped rather than failing the run.`,
		Example: `  ddcswitch chg 1 luminance 10
  ddcswitch chg DISP-1 volume -5`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			prop, err := display.ParseProperty(args[1])
			if err != nil {
				return err
			}
			if !prop.HasMax() {
				return fmt.Errorf("%s cannot be adjusted relatively", prop)
			}

			delta, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("delta must be an integer, got %q", args[2])
			}

			mgr, err := newManager()
			if err != nil {
				return err
			}

			d, err := mgr.Find(ctx, args[0])
			if err != nil {
				return err
			}

			return mgr.Change(ctx, d.ID, prop, delta)
		},
	}
}

// resolveInput accepts either a configured input name (hdmi, usbc, or
// anything the user added) or a raw numeric source code.
func resolveInput(s string) (display.InputSource, error) {
	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}
	if code, ok := cfg.Inputs[s]; ok {
		return display.InputSource(code), nil
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown input %q (configured: %v, or pass a numeric code)", s, inputNames(cfg.Inputs))
	}
	return display.InputSource(code), nil
}

func inputNames(inputs map[string]int) []string {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	return names
}
