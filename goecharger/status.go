package goecharger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Status is a mapping from friendly field name to decoded value, built fresh
// for every GetStatus call. Keys without a decoder in this library keep their
// wire name and raw value.
type Status map[string]any

// Energy holds the decoded nrg array: per-phase voltages, currents, powers
// and power factors as reported by the charger.
type Energy struct {
	Voltage     EnergyVoltage
	Current     EnergyCurrent
	Power       EnergyPower
	PowerFactor EnergyPowerFactor
}

// EnergyVoltage holds per-phase and neutral voltages in volts
type EnergyVoltage struct {
	L1, L2, L3, N float64
}

// EnergyCurrent holds per-phase currents in amperes
type EnergyCurrent struct {
	L1, L2, L3 float64
}

// EnergyPower holds per-phase, neutral and total power in watts
type EnergyPower struct {
	L1, L2, L3, N, Total float64
}

// EnergyPowerFactor holds per-phase power factors in percent
type EnergyPowerFactor struct {
	L1, L2, L3 float64
}

// Decoded value tables for enum-coded status keys, fixed against the
// vendor's API v2 documentation.
var (
	carStates = map[int]string{
		0: "Unknown/Error",
		1: "Idle",
		2: "Charging",
		3: "WaitCar",
		4: "Complete",
		5: "Error",
	}

	errorCodes = map[int]string{
		0:  "",
		1:  "FiAc",
		2:  "FiDc",
		3:  "Phase",
		4:  "Overvolt",
		5:  "Overamp",
		6:  "Diode",
		7:  "Ppinvalid",
		8:  "GndInvalid",
		9:  "ContactorStuck",
		10: "ContactorMiss",
		11: "FiUnknown",
		12: "Unknown",
		13: "Overtemp",
		14: "NoComm",
		15: "StatusLockStuckOpen",
		16: "StatusLockStuckLocked",
		20: "Reserved20",
		21: "Reserved21",
		22: "Reserved22",
		23: "Reserved23",
		24: "Reserved24",
	}

	deviceModels = map[int]string{
		11: "11KW/16A",
		22: "22KW/32A",
	}
)

// friendlyNames maps wire keys to the friendly names used in Status for
// fields this library decodes.
var friendlyNames = map[string]string{
	KeyAmpere:             "ampere",
	KeyAbsoluteMaxCurrent: "ampere_device_maximum",
	KeyAmpereAllowed:      "ampere_allowed",
	KeyCarState:           "car_state",
	KeyChargeLimit:        "charge_limit",
	KeyErrorCode:          "error",
	KeyChargingMode:       "charging_mode",
	KeyEnergy:             "energy",
	KeyPhaseMode:          "phase_mode",
	KeyTemperature:        "temperature",
	KeyCableLockMode:      "cable_lock_mode",
	KeyDeviceModel:        "device_model",
}

// decodeStatus parses a status response body into a Status map. Decoding is
// strict: every explicitly requested key must be present, and any field with
// a decoder must be well-formed, otherwise a decode error is returned.
func decodeStatus(body []byte, requested []string) (Status, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, newDecodeError("failed to parse charger JSON response", err)
	}

	for _, key := range requested {
		if _, ok := raw[key]; !ok {
			return nil, newDecodeError(fmt.Sprintf("requested key '%s' missing from charger response", key), nil)
		}
	}

	status := make(Status, len(raw))
	for key, value := range raw {
		name, decoded, err := decodeElement(key, value)
		if err != nil {
			return nil, err
		}
		status[name] = decoded
	}

	return status, nil
}

// decodeElement decodes a single key/value pair into its friendly name and
// value. Keys without a decoder are returned unchanged.
func decodeElement(key string, value json.RawMessage) (string, any, error) {
	switch key {
	case KeyCarState:
		decoded, err := decodeEnum(key, value, carStates)
		return friendlyNames[key], decoded, err

	case KeyErrorCode:
		decoded, err := decodeEnum(key, value, errorCodes)
		return friendlyNames[key], decoded, err

	case KeyChargingMode:
		code, err := decodeInt(key, value)
		if err != nil {
			return "", nil, err
		}
		mode := ChargingMode(code)
		if !mode.valid() {
			return "", nil, newDecodeError(fmt.Sprintf("key '%s': unknown code %d", key, code), nil)
		}
		return friendlyNames[key], mode.String(), nil

	case KeyPhaseMode:
		code, err := decodeInt(key, value)
		if err != nil {
			return "", nil, err
		}
		mode := PhaseMode(code)
		if !mode.valid() {
			return "", nil, newDecodeError(fmt.Sprintf("key '%s': unknown code %d", key, code), nil)
		}
		return friendlyNames[key], mode.String(), nil

	case KeyCableLockMode:
		code, err := decodeInt(key, value)
		if err != nil {
			return "", nil, err
		}
		mode := CableLockMode(code)
		if !mode.valid() {
			return "", nil, newDecodeError(fmt.Sprintf("key '%s': unknown code %d", key, code), nil)
		}
		return friendlyNames[key], mode.String(), nil

	case KeyDeviceModel:
		decoded, err := decodeEnum(key, value, deviceModels)
		return friendlyNames[key], decoded, err

	case KeyEnergy:
		energy, err := decodeEnergy(value)
		return friendlyNames[key], energy, err

	case KeyTemperature:
		temp, err := decodeTemperature(value)
		return friendlyNames[key], temp, err

	case KeyAmpere, KeyAbsoluteMaxCurrent, KeyAmpereAllowed, KeyChargeLimit:
		// numeric passthrough under the friendly name; dwo may be null
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return "", nil, newDecodeError(fmt.Sprintf("key '%s': malformed value", key), err)
		}
		return friendlyNames[key], v, nil

	default:
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return "", nil, newDecodeError(fmt.Sprintf("key '%s': malformed value", key), err)
		}
		return key, v, nil
	}
}

func decodeInt(key string, value json.RawMessage) (int, error) {
	var code int
	if err := json.Unmarshal(value, &code); err != nil {
		return 0, newDecodeError(fmt.Sprintf("key '%s': expected integer code", key), err)
	}
	return code, nil
}

func decodeEnum(key string, value json.RawMessage, table map[int]string) (string, error) {
	code, err := decodeInt(key, value)
	if err != nil {
		return "", err
	}
	decoded, ok := table[code]
	if !ok {
		return "", newDecodeError(fmt.Sprintf("key '%s': unknown code %d", key, code), nil)
	}
	return decoded, nil
}

// decodeEnergy decodes the nrg array. The charger reports at least 15
// elements: 4 voltages, 3 currents, 5 powers and 3 power factors.
func decodeEnergy(value json.RawMessage) (*Energy, error) {
	var values []float64
	if err := json.Unmarshal(value, &values); err != nil {
		return nil, newDecodeError("key 'nrg': expected numeric array", err)
	}
	if len(values) < 15 {
		return nil, newDecodeError(fmt.Sprintf("key 'nrg': expected at least 15 elements, got %d", len(values)), nil)
	}

	return &Energy{
		Voltage: EnergyVoltage{
			L1: values[0],
			L2: values[1],
			L3: values[2],
			N:  values[3],
		},
		Current: EnergyCurrent{
			L1: values[4],
			L2: values[5],
			L3: values[6],
		},
		Power: EnergyPower{
			L1:    values[7],
			L2:    values[8],
			L3:    values[9],
			N:     values[10],
			Total: values[11],
		},
		PowerFactor: EnergyPowerFactor{
			L1: values[12],
			L2: values[13],
			L3: values[14],
		},
	}, nil
}

// decodeTemperature averages the tma sensor array. An empty array decodes to
// nil, matching the charger reporting no probes.
func decodeTemperature(value json.RawMessage) (any, error) {
	var values []float64
	if err := json.Unmarshal(value, &values); err != nil {
		return nil, newDecodeError("key 'tma': expected numeric array", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// Names returns the friendly field names present in the status, ascending.
func (s Status) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns a one-line summary of the status, using whatever of the
// default fields are present.
func (s Status) Summary() string {
	parts := []string{}
	if v, ok := s["car_state"]; ok {
		parts = append(parts, fmt.Sprintf("car: %v", v))
	}
	if v, ok := s["charging_mode"]; ok {
		parts = append(parts, fmt.Sprintf("mode: %v", v))
	}
	if e, ok := s["energy"].(*Energy); ok && e != nil {
		parts = append(parts, fmt.Sprintf("power: %.0fW", e.Power.Total))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d field(s)", len(s))
	}
	return strings.Join(parts, " • ")
}

// FormatCompact returns one "name: value" line per field, sorted by name.
func (s Status) FormatCompact() string {
	var b strings.Builder
	for _, name := range s.Names() {
		b.WriteString(fmt.Sprintf("%s: %s\n", name, formatValue(s[name])))
	}
	return b.String()
}

// FormatDetailed returns a sectioned report suitable for terminal display.
func (s Status) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Charger Status ===\n")
	for _, name := range s.Names() {
		if name == "energy" {
			continue
		}
		b.WriteString(fmt.Sprintf("%-24s %s\n", name+":", formatValue(s[name])))
	}

	if e, ok := s["energy"].(*Energy); ok && e != nil {
		b.WriteString("\n=== Energy ===\n")
		b.WriteString(fmt.Sprintf("Voltage (V):     L1=%.1f L2=%.1f L3=%.1f N=%.1f\n", e.Voltage.L1, e.Voltage.L2, e.Voltage.L3, e.Voltage.N))
		b.WriteString(fmt.Sprintf("Current (A):     L1=%.1f L2=%.1f L3=%.1f\n", e.Current.L1, e.Current.L2, e.Current.L3))
		b.WriteString(fmt.Sprintf("Power (W):       L1=%.1f L2=%.1f L3=%.1f N=%.1f total=%.1f\n", e.Power.L1, e.Power.L2, e.Power.L3, e.Power.N, e.Power.Total))
		b.WriteString(fmt.Sprintf("Power factor:    L1=%.1f L2=%.1f L3=%.1f\n", e.PowerFactor.L1, e.PowerFactor.L2, e.PowerFactor.L3))
	}

	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "(none)"
	case *Energy:
		if val == nil {
			return "(none)"
		}
		return fmt.Sprintf("%.1fW total", val.Power.Total)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
