package goecharger

import "fmt"

// ChargingMode controls whether a charging session for a plugged-in car is
// forced on, forced off, or left to the charger's own logic.
// Wire representation: integer values of the frc key.
type ChargingMode int

const (
	ChargingModeNeutral ChargingMode = 0
	ChargingModeOff     ChargingMode = 1
	ChargingModeOn      ChargingMode = 2
)

// String returns the mode name as used by the vendor documentation
func (m ChargingMode) String() string {
	switch m {
	case ChargingModeNeutral:
		return "neutral"
	case ChargingModeOff:
		return "off"
	case ChargingModeOn:
		return "on"
	default:
		return fmt.Sprintf("ChargingMode(%d)", int(m))
	}
}

// valid reports whether the value is part of the closed set
func (m ChargingMode) valid() bool {
	return m >= ChargingModeNeutral && m <= ChargingModeOn
}

// ParseChargingMode converts a mode name into a ChargingMode.
// Accepted names: "neutral", "off", "on".
func ParseChargingMode(s string) (ChargingMode, error) {
	switch s {
	case "neutral":
		return ChargingModeNeutral, nil
	case "off":
		return ChargingModeOff, nil
	case "on":
		return ChargingModeOn, nil
	default:
		return 0, newInvalidArgumentError(fmt.Sprintf("charging mode must be 'neutral', 'off' or 'on', got '%s'", s))
	}
}

// PhaseMode selects between one-phase and three-phase charging.
// Wire representation: integer values of the psm key.
type PhaseMode int

const (
	PhaseModeAuto  PhaseMode = 0
	PhaseModeOne   PhaseMode = 1
	PhaseModeThree PhaseMode = 2
)

func (m PhaseMode) String() string {
	switch m {
	case PhaseModeAuto:
		return "auto"
	case PhaseModeOne:
		return "one"
	case PhaseModeThree:
		return "three"
	default:
		return fmt.Sprintf("PhaseMode(%d)", int(m))
	}
}

func (m PhaseMode) valid() bool {
	return m >= PhaseModeAuto && m <= PhaseModeThree
}

// ParsePhaseMode converts a mode name into a PhaseMode.
// Accepted names: "auto", "one", "three".
func ParsePhaseMode(s string) (PhaseMode, error) {
	switch s {
	case "auto":
		return PhaseModeAuto, nil
	case "one":
		return PhaseModeOne, nil
	case "three":
		return PhaseModeThree, nil
	default:
		return 0, newInvalidArgumentError(fmt.Sprintf("phase mode must be 'auto', 'one' or 'three', got '%s'", s))
	}
}

// CableLockMode controls when the charging cable is locked in the socket.
// Wire representation: integer values of the ust key.
type CableLockMode int

const (
	CableLockModeUnlockCarFirst CableLockMode = 0
	CableLockModeAutomatic      CableLockMode = 1
	CableLockModeLocked         CableLockMode = 2
)

func (m CableLockMode) String() string {
	switch m {
	case CableLockModeUnlockCarFirst:
		return "unlockcarfirst"
	case CableLockModeAutomatic:
		return "automatic"
	case CableLockModeLocked:
		return "locked"
	default:
		return fmt.Sprintf("CableLockMode(%d)", int(m))
	}
}

func (m CableLockMode) valid() bool {
	return m >= CableLockModeUnlockCarFirst && m <= CableLockModeLocked
}

// ParseCableLockMode converts a mode name into a CableLockMode.
// Accepted names: "unlockcarfirst", "automatic", "locked".
func ParseCableLockMode(s string) (CableLockMode, error) {
	switch s {
	case "unlockcarfirst":
		return CableLockModeUnlockCarFirst, nil
	case "automatic":
		return CableLockModeAutomatic, nil
	case "locked":
		return CableLockModeLocked, nil
	default:
		return 0, newInvalidArgumentError(fmt.Sprintf("cable lock mode must be 'unlockcarfirst', 'automatic' or 'locked', got '%s'", s))
	}
}

// Ampere limits accepted by the setters. The vendor range is 6-32 A for the
// per-session limit and 0-32 A for the absolute device maximum; 16 A devices
// clamp further on their own.
const (
	MinAmpere            = 6
	MaxAmpere            = 32
	MinAbsoluteMaxAmpere = 0
)

// validateAmpere checks a per-session charging current value
func validateAmpere(value int) error {
	if value < MinAmpere || value > MaxAmpere {
		return newInvalidArgumentError(fmt.Sprintf("ampere value must be %d-%d, got %d", MinAmpere, MaxAmpere, value))
	}
	return nil
}

// validateAbsoluteMaxAmpere checks an absolute device maximum current value
func validateAbsoluteMaxAmpere(value int) error {
	if value < MinAbsoluteMaxAmpere || value > MaxAmpere {
		return newInvalidArgumentError(fmt.Sprintf("absolute max current must be %d-%d, got %d", MinAbsoluteMaxAmpere, MaxAmpere, value))
	}
	return nil
}
