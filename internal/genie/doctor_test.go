package genie

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"go.uber.org/zap"
)

func TestHandleDoctor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	m := &Module{logger: zap.NewNop(), cfg: Config{Endpoints: []string{srv.URL}}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/genie/doctor", nil)
	rec := httptest.NewRecorder()
	m.handleDoctor(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var report DoctorReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Endpoints) != 1 {
		t.Fatalf("len(Endpoints) = %d, want 1", len(report.Endpoints))
	}

	diag := report.Endpoints[0]
	if diag.Endpoint != srv.URL {
		t.Errorf("Endpoint = %q, want %q", diag.Endpoint, srv.URL)
	}
	if !diag.DNS.OK {
		t.Errorf("DNS check failed for loopback: %s", diag.DNS.Error)
	}
	if !diag.TCP.OK {
		t.Errorf("TCP check failed for live server: %s", diag.TCP.Error)
	}

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	wantPort, _ := strconv.Atoi(u.Port())
	if diag.Port != wantPort {
		t.Errorf("Port = %d, want %d", diag.Port, wantPort)
	}
	// Ping is not asserted: ICMP is filtered on most CI networks.
}

func TestHandleDoctor_Saturated(t *testing.T) {
	doctorSemaphore <- struct{}{}
	doctorSemaphore <- struct{}{}
	defer func() {
		<-doctorSemaphore
		<-doctorSemaphore
	}()

	m := &Module{logger: zap.NewNop(), cfg: Config{Endpoints: []string{"https://example.com"}}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/genie/doctor", nil)
	rec := httptest.NewRecorder()
	m.handleDoctor(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestDiagnoseEndpoint_InvalidURL(t *testing.T) {
	m := &Module{logger: zap.NewNop()}

	diag := m.diagnoseEndpoint(context.Background(), "://bad")
	if diag.DNS.OK {
		t.Fatal("DNS.OK = true for unparseable endpoint")
	}
	if diag.DNS.Error != "invalid endpoint URL" {
		t.Errorf("DNS.Error = %q, want %q", diag.DNS.Error, "invalid endpoint URL")
	}
}

func TestDiagnoseEndpoint_UnknownHost(t *testing.T) {
	m := &Module{logger: zap.NewNop()}

	diag := m.diagnoseEndpoint(context.Background(), "https://healthgenie-doctor-probe.invalid")
	if diag.DNS.OK {
		t.Fatal("DNS.OK = true for .invalid host")
	}
	if diag.DNS.Error == "" {
		t.Error("DNS.Error is empty, want lookup failure")
	}
	if diag.TCP.OK {
		t.Error("TCP.OK = true, want check skipped after DNS failure")
	}
	if diag.Port != 443 {
		t.Errorf("Port = %d, want 443 for https scheme", diag.Port)
	}
}

func TestDiagnoseEndpoint_DefaultPorts(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     int
	}{
		{"https_default", "https://healthgenie-port-probe.invalid", 443},
		{"http_default", "http://healthgenie-port-probe.invalid", 80},
		{"explicit", "https://healthgenie-port-probe.invalid:8443", 8443},
	}

	m := &Module{logger: zap.NewNop()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diag := m.diagnoseEndpoint(context.Background(), tt.endpoint)
			if diag.Port != tt.want {
				t.Errorf("Port = %d, want %d", diag.Port, tt.want)
			}
		})
	}
}
