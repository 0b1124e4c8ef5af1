// Package connectivity answers whether the network is reachable right now.
package connectivity

import (
	"net"
	"time"
)

// Prober reports current network reachability. Implementations never return
// an error; any failure means offline.
type Prober interface {
	Online() bool
}

// DialProber probes by opening a short-timeout TCP connection to a well-known
// address. Results are not cached; conditions change between calls.
type DialProber struct {
	Address string
	Timeout time.Duration
}

// NewDialProber creates a prober for addr with the given timeout.
// Zero values fall back to 8.8.8.8:53 and 3 seconds.
func NewDialProber(addr string, timeout time.Duration) *DialProber {
	if addr == "" {
		addr = "8.8.8.8:53"
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &DialProber{Address: addr, Timeout: timeout}
}

// Online dials the probe address. Any dial error or timeout means offline.
func (p *DialProber) Online() bool {
	conn, err := net.DialTimeout("tcp", p.Address, p.Timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Static is a fixed-answer prober for tests and forced-offline operation.
type Static bool

// Online returns the configured answer.
func (s Static) Online() bool { return bool(s) }
