// Package goecharger provides an HTTP client for go-eCharger EV wall boxes
// using the vendor's local HTTP API v2.
//
// The package wraps the two endpoints the charger exposes on the local
// network: /api/status for reading status fields and /api/set for writing
// configuration keys. Status keys are validated against a fixed catalog, and
// enum-coded fields (car state, charging mode, phase mode, cable lock mode,
// error code, device model) are decoded into their documented names.
//
// # Usage Example
//
//	charger, err := goecharger.NewCharger("192.168.1.40")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Read a status subset
//	status, err := charger.GetStatus(ctx, goecharger.StatusMinimum...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(status["car_state"])
//
//	// Force a charging session
//	if err := charger.SetChargingMode(ctx, goecharger.ChargingModeOn); err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// A Charger carries no state beyond the device host and is safe for
// concurrent use. Every network method takes a context.Context; cancelling
// it aborts the in-flight request. No retries are performed internally, so
// callers decide their own retry policy.
//
// # Error Handling
//
// All failures are reported as *DeviceError with a distinct ErrorType:
// invalid arguments are rejected before any network call, transport failures
// are classified (timeout, connection refused, DNS), a 404 answer maps to
// ErrTypeAPIDisabled because it means the local API v2 is switched off on
// the device, and malformed responses surface as decode errors. The Is*
// predicates work through wrapped error chains.
package goecharger
