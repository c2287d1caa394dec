// Package watch implements the live status dashboard for goe-ctl.
//
// The dashboard is a full-screen TUI built on the Bubble Tea framework. It
// polls a charger's default status selection on a fixed interval and renders
// the decoded fields with the Elm-style Model-Update-View pattern. A fetch
// that fails keeps the last known status on screen alongside the error, so a
// flaky Wi-Fi link does not blank the display.
//
// # Framework Components
//
//   - bubbles/spinner: fetch-in-progress indicator
//   - bubbles/help, bubbles/key: footer key bindings
//   - lipgloss: styling and layout
//
// # Usage Example
//
//	charger, err := goecharger.NewCharger("192.168.1.40")
//	if err != nil {
//		return err
//	}
//	return watch.Run(charger, 5*time.Second)
package watch
