package goecharger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/goe/internal/logging"
)

// DefaultTimeout is the default HTTP request timeout
const DefaultTimeout = 3 * time.Second

// Charger is an HTTP client bound to one go-eCharger device. It is stateless
// beyond the device host: no session, no cached status, and it is safe for
// concurrent use. Each call is a single request with no internal retries.
type Charger struct {
	// Host is the hostname or IP address of the charger (e.g. "192.168.1.40")
	Host string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewCharger creates a client for the charger at host.
// host: hostname or IP address of the device on the local network.
func NewCharger(host string) (*Charger, error) {
	if host == "" {
		return nil, newInvalidArgumentError("host needs to be set")
	}

	return &Charger{
		Host:       host,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// SetTimeout sets the HTTP request timeout
func (c *Charger) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// statusURL builds the URL for a status request. An empty selection requests
// every key the charger knows; otherwise a comma-separated filter is sent.
func (c *Charger) statusURL(keys []string) string {
	u := fmt.Sprintf("http://%s/api/status", c.Host)
	if len(keys) > 0 {
		u += "?filter=" + strings.Join(keys, ",")
	}
	return u
}

// setURL builds the URL for setting a key. The value is JSON-encoded per the
// vendor's query syntax (strings quoted, nil encoded as null).
func (c *Charger) setURL(key string, value any) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", newInvalidArgumentError(fmt.Sprintf("value for key '%s' is not encodable: %v", key, err))
	}
	return fmt.Sprintf("http://%s/api/set?%s=%s", c.Host, key, url.QueryEscape(string(encoded))), nil
}

// sendRequest performs a single GET against a prepared URL and returns the
// response body. A 404 answer maps to the distinct API-disabled error; when
// tolerateServerError is set, a 500 answer is passed through so the body can
// still be inspected (the charger answers 500 for some accepted set keys).
func (c *Charger) sendRequest(ctx context.Context, requestURL string, tolerateServerError bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, newNetworkError("failed to create request", c.Host, err)
	}

	logging.Debug("charger request",
		zap.String("host", c.Host),
		zap.String("url", requestURL),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, newNetworkError("error communicating with charger", c.Host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, newAPIDisabledError(c.Host)
	}

	if resp.StatusCode >= 300 && !(tolerateServerError && resp.StatusCode == http.StatusInternalServerError) {
		return nil, newHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), c.Host)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError("failed to read response body", c.Host, err)
	}

	logging.Debug("charger response",
		zap.String("host", c.Host),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)

	return body, nil
}

// GetStatus fetches and decodes status fields from the charger.
// With no keys, the full status is requested; otherwise only the given keys.
// Unknown keys fail fast before any network call. Predefined selections are
// available as StatusFull, StatusMinimum and StatusDefault.
func (c *Charger) GetStatus(ctx context.Context, keys ...string) (Status, error) {
	if err := ValidateKeys(keys); err != nil {
		return nil, err
	}

	body, err := c.sendRequest(ctx, c.statusURL(keys), false)
	if err != nil {
		return nil, err
	}

	return decodeStatus(body, keys)
}

// GetAmpere returns the requested charging current in ampere
func (c *Charger) GetAmpere(ctx context.Context) (Status, error) {
	return c.GetStatus(ctx, KeyAmpereAllowed)
}

// GetChargingMode returns the currently forced charging mode
func (c *Charger) GetChargingMode(ctx context.Context) (Status, error) {
	return c.GetStatus(ctx, KeyChargingMode)
}

// GetPhaseMode returns the phase switch mode (auto / one / three)
func (c *Charger) GetPhaseMode(ctx context.Context) (Status, error) {
	return c.GetStatus(ctx, KeyPhaseMode)
}

// GetAbsoluteMaxCurrent returns the absolute maximum current of the device
func (c *Charger) GetAbsoluteMaxCurrent(ctx context.Context) (Status, error) {
	return c.GetStatus(ctx, KeyAbsoluteMaxCurrent)
}

// GetCableLockMode returns the cable lock mode
func (c *Charger) GetCableLockMode(ctx context.Context) (Status, error) {
	return c.GetStatus(ctx, KeyCableLockMode)
}

// GetChargeLimit returns the charge limit in Wh, or nil when disabled
func (c *Charger) GetChargeLimit(ctx context.Context) (Status, error) {
	return c.GetStatus(ctx, KeyChargeLimit)
}

// setKey sends a set request and verifies the charger acknowledged the key.
// The device answers {"<key>": true} for an accepted set.
func (c *Charger) setKey(ctx context.Context, setting string, key string, value any) error {
	requestURL, err := c.setURL(key, value)
	if err != nil {
		return err
	}

	body, err := c.sendRequest(ctx, requestURL, true)
	if err != nil {
		return err
	}

	var response map[string]any
	if err := json.Unmarshal(body, &response); err != nil {
		return newDecodeError(fmt.Sprintf("failed to parse set response for '%s'", setting), err)
	}

	if accepted, ok := response[key].(bool); !ok || !accepted {
		return newRejectedError(fmt.Sprintf("error setting '%s', got invalid response: '%s'", setting, string(body)))
	}

	return nil
}

// SetKey generically sets a charger key to a value. The key must be part of
// this library's catalog (see CatalogKeys); keys the device knows but the
// catalog does not are rejected with an invalid-argument error rather than
// forwarded. The value itself is not validated, so for the documented
// settings prefer the typed setters.
func (c *Charger) SetKey(ctx context.Context, key string, value any) error {
	if err := ValidateKeys([]string{key}); err != nil {
		return err
	}
	return c.setKey(ctx, key, key, value)
}

// SetChargingMode forces a charging session on or off, or returns control to
// the charger's own logic with ChargingModeNeutral.
func (c *Charger) SetChargingMode(ctx context.Context, mode ChargingMode) error {
	if !mode.valid() {
		return newInvalidArgumentError(fmt.Sprintf("invalid charging mode: %d", int(mode)))
	}
	return c.setKey(ctx, "charging_mode", KeyChargingMode, int(mode))
}

// SetPhaseMode sets the phase switch mode to auto, one or three phase(s)
func (c *Charger) SetPhaseMode(ctx context.Context, mode PhaseMode) error {
	if !mode.valid() {
		return newInvalidArgumentError(fmt.Sprintf("invalid phase mode: %d", int(mode)))
	}
	return c.setKey(ctx, "phase_mode", KeyPhaseMode, int(mode))
}

// SetCableLockMode sets the cable lock mode
func (c *Charger) SetCableLockMode(ctx context.Context, mode CableLockMode) error {
	if !mode.valid() {
		return newInvalidArgumentError(fmt.Sprintf("invalid cable lock mode: %d", int(mode)))
	}
	return c.setKey(ctx, "cable_lock_mode", KeyCableLockMode, int(mode))
}

// SetAmpere sets the requested charging current for the car in ampere.
// Valid range is 6-32; 11 kW devices clamp to 16 A on their own.
func (c *Charger) SetAmpere(ctx context.Context, value int) error {
	if err := validateAmpere(value); err != nil {
		return err
	}
	return c.setKey(ctx, "ampere", KeyAmpereAllowed, value)
}

// SetAbsoluteMaxCurrent sets the absolute maximum current of the device in
// ampere. Valid range is 0-32.
func (c *Charger) SetAbsoluteMaxCurrent(ctx context.Context, value int) error {
	if err := validateAbsoluteMaxAmpere(value); err != nil {
		return err
	}
	return c.setKey(ctx, "absolute_max_current", KeyAbsoluteMaxCurrent, value)
}

// SetChargeLimit sets the charge limit for the current session in Wh.
// Pass nil to disable the limit (encoded as the vendor's null sentinel).
func (c *Charger) SetChargeLimit(ctx context.Context, limitWh *float64) error {
	if limitWh != nil && *limitWh < 0 {
		return newInvalidArgumentError(fmt.Sprintf("charge limit must not be negative, got %.1f", *limitWh))
	}
	if limitWh == nil {
		return c.setKey(ctx, "charge_limit", KeyChargeLimit, nil)
	}
	return c.setKey(ctx, "charge_limit", KeyChargeLimit, *limitWh)
}
