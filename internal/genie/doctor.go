package genie

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// doctorSemaphore limits concurrent doctor runs to 2.
var doctorSemaphore = make(chan struct{}, 2)

// acquireDoctorSlot attempts to acquire a doctor execution slot.
// Returns false if all slots are occupied.
func acquireDoctorSlot() bool {
	select {
	case doctorSemaphore <- struct{}{}:
		return true
	default:
		return false
	}
}

// releaseDoctorSlot releases a doctor execution slot.
func releaseDoctorSlot() {
	<-doctorSemaphore
}

// DoctorReport aggregates connectivity checks for every configured endpoint.
type DoctorReport struct {
	CheckedAt  time.Time           `json:"checked_at"`
	Endpoints  []EndpointDiagnosis `json:"endpoints"`
	DurationMS float64             `json:"duration_ms"`
}

// EndpointDiagnosis holds the three-stage connectivity check for one endpoint.
type EndpointDiagnosis struct {
	Endpoint string    `json:"endpoint"`
	Host     string    `json:"host,omitempty"`
	Port     int       `json:"port,omitempty"`
	DNS      DNSCheck  `json:"dns"`
	TCP      TCPCheck  `json:"tcp"`
	Ping     PingCheck `json:"ping"`
}

// DNSCheck holds forward-lookup results for the endpoint host.
type DNSCheck struct {
	OK         bool     `json:"ok"`
	IPs        []string `json:"ips,omitempty"`
	Error      string   `json:"error,omitempty"`
	DurationMS float64  `json:"duration_ms"`
}

// TCPCheck holds the TCP connect result for the endpoint host and port.
type TCPCheck struct {
	OK         bool    `json:"ok"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// PingCheck holds ICMP echo statistics. Many networks drop ICMP, so a
// failed ping with working DNS and TCP is informational, not a fault.
type PingCheck struct {
	Sent       int     `json:"sent"`
	Received   int     `json:"received"`
	PacketLoss float64 `json:"packet_loss"`
	AvgRTT     float64 `json:"avg_rtt_ms"`
	Error      string  `json:"error,omitempty"`
}

// handleDoctor runs DNS, TCP and ICMP checks against each configured endpoint.
//
//	@Summary		Diagnose endpoint connectivity
//	@Description	Runs DNS resolution, a TCP connect and an ICMP ping against every configured endpoint host.
//	@Tags			genie
//	@Produce		json
//	@Success		200 {object} DoctorReport
//	@Failure		429 {object} map[string]any "Too many concurrent doctor runs"
//	@Router			/genie/doctor [post]
func (m *Module) handleDoctor(w http.ResponseWriter, r *http.Request) {
	if !acquireDoctorSlot() {
		writeError(w, http.StatusTooManyRequests, "too many concurrent doctor runs, please wait")
		return
	}
	defer releaseDoctorSlot()

	m.mu.RLock()
	endpoints := m.cfg.Endpoints
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, m.diagnose(ctx, endpoints))
}

// diagnose checks every endpoint in order. Sequential on purpose: the
// list is short and interleaved pings distort RTT numbers.
func (m *Module) diagnose(ctx context.Context, endpoints []string) *DoctorReport {
	start := time.Now()
	report := &DoctorReport{
		CheckedAt: start.UTC(),
		Endpoints: make([]EndpointDiagnosis, 0, len(endpoints)),
	}
	for _, e := range endpoints {
		report.Endpoints = append(report.Endpoints, m.diagnoseEndpoint(ctx, e))
	}
	report.DurationMS = float64(time.Since(start).Microseconds()) / 1000.0
	return report
}

func (m *Module) diagnoseEndpoint(ctx context.Context, endpoint string) EndpointDiagnosis {
	d := EndpointDiagnosis{Endpoint: endpoint}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		d.DNS.Error = "invalid endpoint URL"
		return d
	}
	d.Host = u.Hostname()
	d.Port = 443
	if p := u.Port(); p != "" {
		d.Port, _ = strconv.Atoi(p)
	} else if u.Scheme == "http" {
		d.Port = 80
	}

	dnsStart := time.Now()
	dnsCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	addrs, err := net.DefaultResolver.LookupHost(dnsCtx, d.Host)
	cancel()
	d.DNS.DurationMS = float64(time.Since(dnsStart).Microseconds()) / 1000.0
	if err != nil {
		d.DNS.Error = err.Error()
		// TCP and ping would fail on the same lookup; stop here.
		return d
	}
	d.DNS.OK = true
	d.DNS.IPs = addrs

	tcpStart := time.Now()
	var dialer net.Dialer
	tcpCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	conn, err := dialer.DialContext(tcpCtx, "tcp", net.JoinHostPort(d.Host, strconv.Itoa(d.Port)))
	cancel()
	d.TCP.DurationMS = float64(time.Since(tcpStart).Microseconds()) / 1000.0
	if err != nil {
		d.TCP.Error = err.Error()
	} else {
		d.TCP.OK = true
		conn.Close()
	}

	d.Ping = runPing(ctx, d.Host, m.logger.Named("doctor"))
	return d
}

// runPing sends a short ICMP burst using the pro-bing library.
func runPing(ctx context.Context, host string, logger *zap.Logger) PingCheck {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return PingCheck{Error: err.Error()}
	}

	pinger.Count = 3
	pinger.Timeout = 3 * time.Second
	pinger.SetPrivileged(runtime.GOOS == "windows")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if runErr := pinger.Run(); runErr != nil {
			logger.Debug("ping run error", zap.String("host", host), zap.Error(runErr))
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		pinger.Stop()
		return PingCheck{Error: ctx.Err().Error()}
	}

	stats := pinger.Statistics()
	check := PingCheck{
		Sent:       stats.PacketsSent,
		Received:   stats.PacketsRecv,
		PacketLoss: stats.PacketLoss,
		AvgRTT:     float64(stats.AvgRtt.Microseconds()) / 1000.0,
	}
	if stats.PacketsRecv == 0 {
		check.Error = "no echo replies (ICMP may be filtered)"
	}
	return check
}
