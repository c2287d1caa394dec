package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/goe/goecharger"
	"github.com/muurk/goe/internal/config"
	"github.com/muurk/goe/internal/watch"
)

// Charger command flags
var (
	chargerHost    string
	requestTimeout int
	outputFormat   string
	useMinimum     bool
	watchInterval  int
	deviceLabel    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&chargerHost, "host", "", "Charger hostname, IP address or registered nickname")
	rootCmd.PersistentFlags().IntVar(&requestTimeout, "timeout", 3, "Request timeout in seconds")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(deviceCmd)
	rootCmd.AddCommand(keysCmd)
}

// newCharger resolves the --host flag (nickname or raw host) and builds a
// client with the requested timeout.
func newCharger() (*goecharger.Charger, error) {
	if chargerHost == "" {
		return nil, fmt.Errorf("no charger given, use --host or register one with 'goe-ctl device add'")
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load charger registry: %w", err)
	}

	charger, err := goecharger.NewCharger(registry.Resolve(chargerHost))
	if err != nil {
		return nil, err
	}
	charger.SetTimeout(time.Duration(requestTimeout) * time.Second)

	return charger, nil
}

// requestContext builds the context for a single charger request
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(requestTimeout)*time.Second)
}

// markSeen records a successful connection for a registered nickname.
// Raw hosts that are not in the registry are left alone.
func markSeen() {
	registry, err := config.LoadRegistry()
	if err != nil {
		return
	}
	charger, ok := registry.Chargers[chargerHost]
	if !ok {
		return
	}
	charger.LastSeen = time.Now()
	_ = registry.Save()
}

// statusCmd reads status fields from the charger
var statusCmd = &cobra.Command{
	Use:   "status [key...]",
	Short: "Read charger status",
	Long: `Read status fields from the charger.

Without arguments the default selection is fetched (car state, error,
charging mode, energy, phase mode, temperature and current limits).
Pass API keys as arguments to fetch specific fields, --minimum for the
small car/error/mode selection, or --full for every field the charger
reports.`,
	Example: `  # Default selection
  goe-ctl status --host 192.168.1.40

  # Specific fields by API key
  goe-ctl status --host garage car nrg tma

  # Everything the charger reports, as JSON
  goe-ctl status --host garage --full --format json`,
	RunE: runStatus,
}

var fullSelection bool

func init() {
	statusCmd.Flags().BoolVar(&useMinimum, "minimum", false, "Fetch only car state, error and charging mode")
	statusCmd.Flags().BoolVar(&fullSelection, "full", false, "Fetch every field the charger reports")
}

func runStatus(cmd *cobra.Command, args []string) error {
	charger, err := newCharger()
	if err != nil {
		return err
	}

	keys := goecharger.StatusDefault
	switch {
	case len(args) > 0:
		keys = args
	case useMinimum:
		keys = goecharger.StatusMinimum
	case fullSelection:
		keys = goecharger.StatusFull
	}

	ctx, cancel := requestContext()
	defer cancel()

	status, err := charger.GetStatus(ctx, keys...)
	if err != nil {
		return fmt.Errorf("%s", goecharger.ShortMessage(err))
	}
	markSeen()

	switch outputFormat {
	case "compact":
		fmt.Print(status.FormatCompact())
	case "json":
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "detailed":
		fallthrough
	default:
		fmt.Print(status.FormatDetailed())
	}

	return nil
}

// setCmd groups the setter subcommands
var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change charger settings",
	Long: `Change charger settings over the local API.

Values are validated locally before any request is sent, so an invalid
mode or an out-of-range current never reaches the device.`,
}

func init() {
	setCmd.AddCommand(setChargingModeCmd)
	setCmd.AddCommand(setPhaseModeCmd)
	setCmd.AddCommand(setCableLockCmd)
	setCmd.AddCommand(setAmpereCmd)
	setCmd.AddCommand(setMaxCurrentCmd)
	setCmd.AddCommand(setChargeLimitCmd)
	setCmd.AddCommand(setKeyCmd)
}

// runSet wraps a setter call with the shared client plumbing
func runSet(action string, call func(*goecharger.Charger, context.Context) error) error {
	charger, err := newCharger()
	if err != nil {
		return err
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := call(charger, ctx); err != nil {
		return fmt.Errorf("%s", goecharger.ShortMessage(err))
	}
	markSeen()

	fmt.Printf("✓ %s\n", action)
	return nil
}

var setChargingModeCmd = &cobra.Command{
	Use:   "charging-mode <neutral|off|on>",
	Short: "Force charging on or off, or return control to the charger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := goecharger.ParseChargingMode(args[0])
		if err != nil {
			return fmt.Errorf("%s", goecharger.ShortMessage(err))
		}
		return runSet(fmt.Sprintf("charging mode set to %s", mode), func(c *goecharger.Charger, ctx context.Context) error {
			return c.SetChargingMode(ctx, mode)
		})
	},
}

var setPhaseModeCmd = &cobra.Command{
	Use:   "phase-mode <auto|one|three>",
	Short: "Select one-phase or three-phase charging",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := goecharger.ParsePhaseMode(args[0])
		if err != nil {
			return fmt.Errorf("%s", goecharger.ShortMessage(err))
		}
		return runSet(fmt.Sprintf("phase mode set to %s", mode), func(c *goecharger.Charger, ctx context.Context) error {
			return c.SetPhaseMode(ctx, mode)
		})
	},
}

var setCableLockCmd = &cobra.Command{
	Use:   "cable-lock <unlockcarfirst|automatic|locked>",
	Short: "Control when the cable is locked in the socket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := goecharger.ParseCableLockMode(args[0])
		if err != nil {
			return fmt.Errorf("%s", goecharger.ShortMessage(err))
		}
		return runSet(fmt.Sprintf("cable lock mode set to %s", mode), func(c *goecharger.Charger, ctx context.Context) error {
			return c.SetCableLockMode(ctx, mode)
		})
	},
}

var setAmpereCmd = &cobra.Command{
	Use:   "ampere <6-32>",
	Short: "Set the requested charging current in ampere",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("ampere value must be a number, got '%s'", args[0])
		}
		return runSet(fmt.Sprintf("charging current set to %d A", value), func(c *goecharger.Charger, ctx context.Context) error {
			return c.SetAmpere(ctx, value)
		})
	},
}

var setMaxCurrentCmd = &cobra.Command{
	Use:   "max-current <0-32>",
	Short: "Set the absolute maximum current of the device in ampere",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("current value must be a number, got '%s'", args[0])
		}
		return runSet(fmt.Sprintf("absolute maximum current set to %d A", value), func(c *goecharger.Charger, ctx context.Context) error {
			return c.SetAbsoluteMaxCurrent(ctx, value)
		})
	},
}

var setChargeLimitCmd = &cobra.Command{
	Use:   "charge-limit <wh|off>",
	Short: "Limit the energy of the current session in Wh, or disable the limit",
	Example: `  # Stop after 10 kWh
  goe-ctl set charge-limit --host garage 10000

  # Remove the limit
  goe-ctl set charge-limit --host garage off`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "off" {
			return runSet("charge limit disabled", func(c *goecharger.Charger, ctx context.Context) error {
				return c.SetChargeLimit(ctx, nil)
			})
		}

		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("charge limit must be a number of Wh or 'off', got '%s'", args[0])
		}
		return runSet(fmt.Sprintf("charge limit set to %.0f Wh", value), func(c *goecharger.Charger, ctx context.Context) error {
			return c.SetChargeLimit(ctx, &value)
		})
	},
}

var setKeyCmd = &cobra.Command{
	Use:   "key <api-key> <json-value>",
	Short: "Set any API key to a raw JSON value",
	Long: `Set any API key to a raw JSON value.

The value is parsed as JSON, so strings need quoting and null disables
nullable settings. Prefer the typed subcommands for the documented
settings; this escape hatch skips their validation.`,
	Example: `  # Rename the charger
  goe-ctl set key --host garage fna '"Garage Wallbox"'

  # Disable the charge limit
  goe-ctl set key --host garage dwo null`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value any
		if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
			return fmt.Errorf("value must be valid JSON (quote strings): %w", err)
		}
		return runSet(fmt.Sprintf("%s set to %s", args[0], args[1]), func(c *goecharger.Charger, ctx context.Context) error {
			return c.SetKey(ctx, args[0], value)
		})
	},
}

// watchCmd runs the live TUI dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch charger status in a live dashboard",
	Long: `Watch charger status in a full-screen terminal dashboard.

The dashboard polls the charger on a fixed interval and shows car state,
charging mode, power, per-phase measurements and temperature. Press 'r'
to refresh immediately, 'q' to quit.`,
	Example: `  goe-ctl watch --host garage
  goe-ctl watch --host 192.168.1.40 --interval 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		charger, err := newCharger()
		if err != nil {
			return err
		}
		return watch.Run(charger, time.Duration(watchInterval)*time.Second)
	},
}

func init() {
	watchCmd.Flags().IntVar(&watchInterval, "interval", 5, "Poll interval in seconds")
}

// keysCmd lists the API keys this tool understands
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List known API keys",
	Long:  `List the charger API keys this tool understands, with a short description of each.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, key := range goecharger.CatalogKeys() {
			fmt.Printf("%-6s %s\n", key, goecharger.Describe(key))
		}
	},
}

// deviceCmd manages the local nickname registry
var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage registered chargers",
	Long: `Manage the local registry of charger nicknames.

Registered chargers can be addressed by nickname in every command's
--host flag. The registry is a local YAML file; the devices themselves
are not modified.`,
}

func init() {
	deviceAddCmd.Flags().StringVar(&deviceLabel, "label", "", "Optional free-form description")

	deviceCmd.AddCommand(deviceAddCmd)
	deviceCmd.AddCommand(deviceRemoveCmd)
	deviceCmd.AddCommand(deviceListCmd)
}

var deviceAddCmd = &cobra.Command{
	Use:   "add <nickname> <host>",
	Short: "Register a charger under a nickname",
	Example: `  goe-ctl device add garage 192.168.1.40
  goe-ctl device add carport wallbox.fritz.box --label "22 kW carport"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, host := args[0], args[1]

		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load charger registry: %w", err)
		}

		registry.Chargers[name] = &config.Charger{
			Host:  host,
			Label: deviceLabel,
		}

		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save charger registry: %w", err)
		}

		fmt.Printf("✓ registered '%s' -> %s\n", name, host)
		return nil
	},
}

var deviceRemoveCmd = &cobra.Command{
	Use:   "remove <nickname>",
	Short: "Remove a registered charger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load charger registry: %w", err)
		}

		if _, ok := registry.Chargers[name]; !ok {
			return fmt.Errorf("no charger registered as '%s'", name)
		}
		delete(registry.Chargers, name)

		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save charger registry: %w", err)
		}

		fmt.Printf("✓ removed '%s'\n", name)
		return nil
	},
}

var deviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered chargers",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load charger registry: %w", err)
		}

		if len(registry.Chargers) == 0 {
			fmt.Println("No chargers registered. Use 'goe-ctl device add <nickname> <host>'.")
			return nil
		}

		names := make([]string, 0, len(registry.Chargers))
		for name := range registry.Chargers {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			charger := registry.Chargers[name]
			fmt.Printf("%-16s %s", name, charger.Host)
			if charger.Label != "" {
				fmt.Printf("  (%s)", charger.Label)
			}
			if !charger.LastSeen.IsZero() {
				fmt.Printf("  last seen %s", charger.LastSeen.Format("2006-01-02 15:04"))
			}
			fmt.Println()
		}
		return nil
	},
}
