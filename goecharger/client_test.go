package goecharger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// Mock status response covering the default key selection
const mockDefaultStatusResponse = `{"acu":6,"ama":16,"car":2,"dwo":null,"err":0,"frc":0,"nrg":[231.2,230.9,231.5,1.2,6.1,6.0,6.2,1410.3,1385.2,1435.1,0.5,4231.1,99.2,98.7,99.0],"psm":2,"tma":[30.5,33.5],"ust":0,"var":11}`

// newTestCharger starts a stub charger and returns a client bound to it
func newTestCharger(t *testing.T, handler http.HandlerFunc) (*Charger, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	charger, err := NewCharger(strings.TrimPrefix(server.URL, "http://"))
	if err != nil {
		t.Fatalf("NewCharger() error = %v", err)
	}

	return charger, server
}

func TestNewCharger(t *testing.T) {
	charger, err := NewCharger("192.168.1.40")
	if err != nil {
		t.Fatalf("NewCharger() error = %v", err)
	}

	if charger.Host != "192.168.1.40" {
		t.Errorf("Host = %s, want 192.168.1.40", charger.Host)
	}

	if charger.HTTPClient == nil {
		t.Error("HTTPClient should not be nil")
	}

	if charger.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", charger.HTTPClient.Timeout, DefaultTimeout)
	}
}

func TestNewCharger_EmptyHost(t *testing.T) {
	_, err := NewCharger("")
	if err == nil {
		t.Fatal("expected error for empty host")
	}
	if !IsInvalidArgument(err) {
		t.Errorf("IsInvalidArgument() = false, want true for %v", err)
	}
}

func TestSetTimeout(t *testing.T) {
	charger, _ := NewCharger("192.168.1.40")
	charger.SetTimeout(5 * time.Second)

	if charger.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", charger.HTTPClient.Timeout)
	}
}

func TestGetStatus_FullSelection(t *testing.T) {
	var gotFilter string
	var hasFilter bool

	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("path = %s, want /api/status", r.URL.Path)
		}
		gotFilter = r.URL.Query().Get("filter")
		hasFilter = r.URL.Query().Has("filter")
		_, _ = w.Write([]byte(mockDefaultStatusResponse))
	})

	status, err := charger.GetStatus(context.Background(), StatusFull...)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}

	if hasFilter {
		t.Errorf("full selection sent filter=%q, want no filter parameter", gotFilter)
	}

	if status["car_state"] != "Charging" {
		t.Errorf("car_state = %v, want Charging", status["car_state"])
	}
	if status["charging_mode"] != "neutral" {
		t.Errorf("charging_mode = %v, want neutral", status["charging_mode"])
	}
	if status["phase_mode"] != "three" {
		t.Errorf("phase_mode = %v, want three", status["phase_mode"])
	}
	if status["cable_lock_mode"] != "unlockcarfirst" {
		t.Errorf("cable_lock_mode = %v, want unlockcarfirst", status["cable_lock_mode"])
	}
	if status["device_model"] != "11KW/16A" {
		t.Errorf("device_model = %v, want 11KW/16A", status["device_model"])
	}
	if status["error"] != "" {
		t.Errorf("error = %v, want empty decoded error", status["error"])
	}
	if status["charge_limit"] != nil {
		t.Errorf("charge_limit = %v, want nil", status["charge_limit"])
	}

	temp, ok := status["temperature"].(float64)
	if !ok || temp != 32.0 {
		t.Errorf("temperature = %v, want 32.0", status["temperature"])
	}

	energy, ok := status["energy"].(*Energy)
	if !ok || energy == nil {
		t.Fatalf("energy = %v, want decoded *Energy", status["energy"])
	}
	if energy.Power.Total != 4231.1 {
		t.Errorf("energy.Power.Total = %v, want 4231.1", energy.Power.Total)
	}
	if energy.Voltage.L1 != 231.2 {
		t.Errorf("energy.Voltage.L1 = %v, want 231.2", energy.Voltage.L1)
	}
}

func TestGetStatus_FilterParameter(t *testing.T) {
	var gotFilter string

	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		_, _ = w.Write([]byte(`{"car":1,"err":0,"frc":0}`))
	})

	_, err := charger.GetStatus(context.Background(), StatusMinimum...)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}

	if gotFilter != "car,err,frc" {
		t.Errorf("filter = %q, want car,err,frc", gotFilter)
	}
}

func TestGetStatus_UndecodedKeysPassThrough(t *testing.T) {
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fna":"myEVCharger","oem":"go-e"}`))
	})

	status, err := charger.GetStatus(context.Background(), "fna", "oem")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}

	if len(status) != 2 {
		t.Errorf("len(status) = %d, want 2", len(status))
	}
	if status["fna"] != "myEVCharger" {
		t.Errorf("fna = %v, want myEVCharger", status["fna"])
	}
	if status["oem"] != "go-e" {
		t.Errorf("oem = %v, want go-e", status["oem"])
	}
}

func TestGetStatus_UnknownKeyFailsBeforeRequest(t *testing.T) {
	hits := 0
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	_, err := charger.GetStatus(context.Background(), "car", "bogus")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !IsInvalidArgument(err) {
		t.Errorf("IsInvalidArgument() = false, want true for %v", err)
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error %q should name the unknown key", err.Error())
	}
	if hits != 0 {
		t.Errorf("handler hits = %d, want 0 (validation must fail first)", hits)
	}
}

func TestGetStatus_APIDisabled(t *testing.T) {
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := charger.GetStatus(context.Background(), "car")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !IsAPIDisabled(err) {
		t.Errorf("IsAPIDisabled() = false, want true for %v", err)
	}
}

func TestGetStatus_ServerError(t *testing.T) {
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := charger.GetStatus(context.Background(), "car")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !IsHTTPError(err) {
		t.Errorf("IsHTTPError() = false, want true for %v", err)
	}

	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected *DeviceError, got %T", err)
	}
	if devErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", devErr.StatusCode)
	}
}

func TestGetStatus_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := strings.TrimPrefix(server.URL, "http://")
	server.Close()

	charger, err := NewCharger(host)
	if err != nil {
		t.Fatalf("NewCharger() error = %v", err)
	}

	_, err = charger.GetStatus(context.Background(), "car")
	if err == nil {
		t.Fatal("expected error for refused connection")
	}
	if !IsNetworkError(err) {
		t.Errorf("IsNetworkError() = false, want true for %v", err)
	}
}

func TestGetStatus_ContextCancelled(t *testing.T) {
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := charger.GetStatus(ctx, "car")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !IsNetworkError(err) {
		t.Errorf("IsNetworkError() = false, want true for %v", err)
	}
}

func TestTypedGetters(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*Charger, context.Context) (Status, error)
		wantKey  string
		response string
		field    string
		want     any
	}{
		{
			name:     "ampere",
			call:     (*Charger).GetAmpere,
			wantKey:  "amp",
			response: `{"amp":16}`,
			field:    "ampere_allowed",
			want:     float64(16),
		},
		{
			name:     "charging mode",
			call:     (*Charger).GetChargingMode,
			wantKey:  "frc",
			response: `{"frc":2}`,
			field:    "charging_mode",
			want:     "on",
		},
		{
			name:     "phase mode",
			call:     (*Charger).GetPhaseMode,
			wantKey:  "psm",
			response: `{"psm":1}`,
			field:    "phase_mode",
			want:     "one",
		},
		{
			name:     "absolute max current",
			call:     (*Charger).GetAbsoluteMaxCurrent,
			wantKey:  "ama",
			response: `{"ama":32}`,
			field:    "ampere_device_maximum",
			want:     float64(32),
		},
		{
			name:     "cable lock mode",
			call:     (*Charger).GetCableLockMode,
			wantKey:  "ust",
			response: `{"ust":2}`,
			field:    "cable_lock_mode",
			want:     "locked",
		},
		{
			name:     "charge limit",
			call:     (*Charger).GetChargeLimit,
			wantKey:  "dwo",
			response: `{"dwo":2500}`,
			field:    "charge_limit",
			want:     float64(2500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFilter string
			charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
				gotFilter = r.URL.Query().Get("filter")
				_, _ = w.Write([]byte(tt.response))
			})

			status, err := tt.call(charger, context.Background())
			if err != nil {
				t.Fatalf("getter error = %v", err)
			}

			if gotFilter != tt.wantKey {
				t.Errorf("filter = %q, want %q", gotFilter, tt.wantKey)
			}
			if status[tt.field] != tt.want {
				t.Errorf("%s = %v, want %v", tt.field, status[tt.field], tt.want)
			}
		})
	}
}

func TestSetChargingMode(t *testing.T) {
	var gotQuery string
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/set" {
			t.Errorf("path = %s, want /api/set", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"frc":true}`))
	})

	if err := charger.SetChargingMode(context.Background(), ChargingModeOn); err != nil {
		t.Fatalf("SetChargingMode() error = %v", err)
	}

	if gotQuery != "frc=2" {
		t.Errorf("query = %q, want frc=2", gotQuery)
	}
}

func TestSetChargingMode_InvalidFailsBeforeRequest(t *testing.T) {
	hits := 0
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	err := charger.SetChargingMode(context.Background(), ChargingMode(7))
	if err == nil {
		t.Fatal("expected error for invalid charging mode")
	}
	if !IsInvalidArgument(err) {
		t.Errorf("IsInvalidArgument() = false, want true for %v", err)
	}
	if hits != 0 {
		t.Errorf("handler hits = %d, want 0 (validation must fail first)", hits)
	}
}

func TestSetPhaseMode_InvalidFailsBeforeRequest(t *testing.T) {
	hits := 0
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	if err := charger.SetPhaseMode(context.Background(), PhaseMode(-1)); err == nil {
		t.Fatal("expected error for invalid phase mode")
	} else if !IsInvalidArgument(err) {
		t.Errorf("IsInvalidArgument() = false, want true for %v", err)
	}
	if hits != 0 {
		t.Errorf("handler hits = %d, want 0", hits)
	}
}

func TestSetCableLockMode_InvalidFailsBeforeRequest(t *testing.T) {
	hits := 0
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	if err := charger.SetCableLockMode(context.Background(), CableLockMode(3)); err == nil {
		t.Fatal("expected error for invalid cable lock mode")
	} else if !IsInvalidArgument(err) {
		t.Errorf("IsInvalidArgument() = false, want true for %v", err)
	}
	if hits != 0 {
		t.Errorf("handler hits = %d, want 0", hits)
	}
}

func TestSetAmpere(t *testing.T) {
	var gotQuery string
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"amp":true}`))
	})

	if err := charger.SetAmpere(context.Background(), 16); err != nil {
		t.Fatalf("SetAmpere() error = %v", err)
	}

	if gotQuery != "amp=16" {
		t.Errorf("query = %q, want amp=16", gotQuery)
	}
}

func TestSetAmpere_OutOfRange(t *testing.T) {
	hits := 0
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	for _, value := range []int{5, 0, -1, 33, 100} {
		if err := charger.SetAmpere(context.Background(), value); err == nil {
			t.Errorf("SetAmpere(%d) expected error", value)
		} else if !IsInvalidArgument(err) {
			t.Errorf("SetAmpere(%d): IsInvalidArgument() = false for %v", value, err)
		}
	}
	if hits != 0 {
		t.Errorf("handler hits = %d, want 0", hits)
	}
}

func TestSetAbsoluteMaxCurrent(t *testing.T) {
	var gotQuery string
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"ama":true}`))
	})

	if err := charger.SetAbsoluteMaxCurrent(context.Background(), 0); err != nil {
		t.Fatalf("SetAbsoluteMaxCurrent() error = %v", err)
	}

	if gotQuery != "ama=0" {
		t.Errorf("query = %q, want ama=0", gotQuery)
	}

	if err := charger.SetAbsoluteMaxCurrent(context.Background(), 33); err == nil {
		t.Error("SetAbsoluteMaxCurrent(33) expected error")
	}
}

func TestSetChargeLimit(t *testing.T) {
	var gotQuery string
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"dwo":true}`))
	})

	limit := 2500.0
	if err := charger.SetChargeLimit(context.Background(), &limit); err != nil {
		t.Fatalf("SetChargeLimit(2500) error = %v", err)
	}
	if gotQuery != "dwo=2500" {
		t.Errorf("query = %q, want dwo=2500", gotQuery)
	}

	if err := charger.SetChargeLimit(context.Background(), nil); err != nil {
		t.Fatalf("SetChargeLimit(nil) error = %v", err)
	}
	if gotQuery != "dwo=null" {
		t.Errorf("query = %q, want dwo=null", gotQuery)
	}
}

func TestSetChargeLimit_Negative(t *testing.T) {
	hits := 0
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	limit := -100.0
	if err := charger.SetChargeLimit(context.Background(), &limit); err == nil {
		t.Fatal("expected error for negative charge limit")
	} else if !IsInvalidArgument(err) {
		t.Errorf("IsInvalidArgument() = false, want true for %v", err)
	}
	if hits != 0 {
		t.Errorf("handler hits = %d, want 0", hits)
	}
}

func TestSetKey_StringValueQuoted(t *testing.T) {
	var gotQuery string
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"fna":true}`))
	})

	if err := charger.SetKey(context.Background(), "fna", "garage"); err != nil {
		t.Fatalf("SetKey() error = %v", err)
	}

	// string values travel JSON-encoded, so the quotes are part of the value
	if gotQuery != `fna=%22garage%22` {
		t.Errorf("query = %q, want fna=%%22garage%%22", gotQuery)
	}
}

func TestSetKey_UnknownKey(t *testing.T) {
	hits := 0
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
	})

	if err := charger.SetKey(context.Background(), "nope", 1); err == nil {
		t.Fatal("expected error for unknown key")
	} else if !IsInvalidArgument(err) {
		t.Errorf("IsInvalidArgument() = false, want true for %v", err)
	}
	if hits != 0 {
		t.Errorf("handler hits = %d, want 0", hits)
	}
}

func TestSet_Rejected(t *testing.T) {
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"frc":false}`))
	})

	err := charger.SetChargingMode(context.Background(), ChargingModeOff)
	if err == nil {
		t.Fatal("expected error for rejected set")
	}
	if !IsRejected(err) {
		t.Errorf("IsRejected() = false, want true for %v", err)
	}
}

func TestSet_ToleratesServerError(t *testing.T) {
	// Some firmware versions answer 500 while still acknowledging the key
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"amp":true}`))
	})

	if err := charger.SetAmpere(context.Background(), 10); err != nil {
		t.Errorf("SetAmpere() error = %v, want 500 with ack tolerated", err)
	}
}

func TestSet_APIDisabled(t *testing.T) {
	charger, _ := newTestCharger(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := charger.SetAmpere(context.Background(), 10)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !IsAPIDisabled(err) {
		t.Errorf("IsAPIDisabled() = false, want true for %v", err)
	}
}
