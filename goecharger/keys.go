package goecharger

import (
	"fmt"
	"sort"
	"strings"
)

// Status key selections for GetStatus. StatusFull requests every key the
// charger knows; the others are the predefined subsets from the vendor API.
var (
	// StatusFull selects all status keys (no filter parameter is sent)
	StatusFull = []string{}

	// StatusMinimum selects car state, error code and charging mode
	StatusMinimum = []string{
		KeyCarState,
		KeyErrorCode,
		KeyChargingMode,
	}

	// StatusDefault is a practical everyday selection
	StatusDefault = []string{
		KeyAmpere,
		KeyAbsoluteMaxCurrent,
		KeyCarState,
		KeyChargeLimit,
		KeyErrorCode,
		KeyChargingMode,
		KeyEnergy,
		KeyPhaseMode,
		KeyTemperature,
		KeyCableLockMode,
		KeyDeviceModel,
	}
)

// Wire keys for the settings and status fields this library decodes or sets.
// The short codes are defined by the go-eCharger local HTTP API v2.
const (
	KeyAmpere             = "acu" // ampere the car may charge with right now
	KeyAmpereAllowed      = "amp" // requested charging current
	KeyAbsoluteMaxCurrent = "ama" // absolute maximum current of the device
	KeyCarState           = "car" // car/charging session state
	KeyChargeLimit        = "dwo" // charge limit in Wh, null when disabled
	KeyErrorCode          = "err" // error code
	KeyChargingMode       = "frc" // forced state (neutral/off/on)
	KeyEnergy             = "nrg" // energy array: voltages, currents, powers
	KeyPhaseMode          = "psm" // phase switch mode
	KeyTemperature        = "tma" // temperature sensor readings
	KeyCableLockMode      = "ust" // cable unlock setting
	KeyDeviceModel        = "var" // device variant (11 or 22 kW)
)

// keyCatalog maps every status key known to this library to a short
// description. The table is fixed against the vendor's API v2 key list and
// never mutated after package initialisation.
var keyCatalog = map[string]string{
	"acs":  "access control state",
	"acu":  "ampere the car is allowed to charge with now",
	"alw":  "car is allowed to charge at all",
	"ama":  "absolute maximum current setting (A)",
	"amp":  "requested charging current (A)",
	"car":  "car state",
	"cbl":  "cable maximum current (A)",
	"cdi":  "charging duration info",
	"cus":  "cable unlock status",
	"dwo":  "charge limit (Wh), null when disabled",
	"err":  "error code",
	"eto":  "energy total (Wh)",
	"fhz":  "grid frequency (Hz)",
	"fna":  "friendly device name",
	"frc":  "forced state / charging mode",
	"fwv":  "firmware version",
	"lmo":  "logic mode",
	"nrg":  "energy array (voltages, currents, powers, power factors)",
	"oem":  "OEM manufacturer",
	"pha":  "phase availability",
	"psm":  "phase switch mode",
	"rbc":  "reboot counter",
	"rbt":  "time since boot (ms)",
	"rssi": "WiFi signal strength (dBm)",
	"sse":  "serial number",
	"tma":  "temperature sensor readings (°C)",
	"trx":  "transaction / authentication state",
	"typ":  "device type",
	"ust":  "cable unlock setting",
	"utc":  "UTC time on device",
	"var":  "device variant (11/22 kW)",
	"wh":   "energy since car connected (Wh)",
	"wss":  "WiFi SSID",
}

// KnownKey reports whether key is part of the vendor's API v2 key catalog
// as known to this library.
func KnownKey(key string) bool {
	_, ok := keyCatalog[key]
	return ok
}

// Describe returns the catalog description for a status key, or an empty
// string for unknown keys.
func Describe(key string) string {
	return keyCatalog[key]
}

// CatalogKeys returns all known status keys in ascending order.
func CatalogKeys() []string {
	keys := make([]string, 0, len(keyCatalog))
	for key := range keyCatalog {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ValidateKeys checks a requested status-key selection against the catalog.
// Unknown keys fail fast with an invalid-argument error instead of being
// forwarded to the device.
func ValidateKeys(keys []string) error {
	var unknown []string
	for _, key := range keys {
		if !KnownKey(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return newInvalidArgumentError(fmt.Sprintf("unknown status key(s): %s", strings.Join(unknown, ", ")))
	}
	return nil
}
