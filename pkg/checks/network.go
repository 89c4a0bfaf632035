package checks

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/danpilch/hycucheck/pkg/hycu"
	"github.com/danpilch/hycucheck/pkg/plugin"
	"golang.org/x/sys/unix"
)

const maxPortTimeout = 30 * time.Second

// PortCheck probes TCP reachability of the controller. It needs no token.
type PortCheck struct {
	meta
}

// NewPortCheck returns the check for -t port.
func NewPortCheck() *PortCheck {
	return &PortCheck{meta: meta{
		name:     "port",
		category: CategoryNetwork,
		reqs:     Requirements{Target: true},
	}}
}

// port parses -n. The literal "-n port" selects the API port.
func (c *PortCheck) port(req Request) (int, error) {
	if req.Target == c.name {
		return hycu.DefaultPort, nil
	}
	p, err := strconv.Atoi(req.Target)
	if err != nil {
		return 0, &plugin.ValidationError{Reason: "Port number must be an integer, got '" + req.Target + "'"}
	}
	if p < 1 || p > 65535 {
		return 0, &plugin.ValidationError{Reason: "Port number must be between 1 and 65535"}
	}
	return p, nil
}

// Validate checks the port number.
func (c *PortCheck) Validate(req Request) error {
	_, err := c.port(req)
	return err
}

func portTimeout(req Request) time.Duration {
	if req.Timeout <= 0 || req.Timeout > maxPortTimeout {
		return maxPortTimeout
	}
	return req.Timeout
}

// isRefused reports errors meaning nothing is listening or the host is
// unreachable, as opposed to a timeout.
func isRefused(err error) bool {
	return errors.Is(err, unix.ECONNREFUSED) ||
		errors.Is(err, unix.EHOSTUNREACH) ||
		errors.Is(err, unix.ENETUNREACH)
}

// Run dials host:port once.
func (c *PortCheck) Run(ctx context.Context, env Env, req Request) (plugin.Result, error) {
	port, err := c.port(req)
	if err != nil {
		return plugin.Result{}, err
	}
	timeout := portTimeout(req)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := net.JoinHostPort(req.Host, strconv.Itoa(port))
	env.Logger.WithField("address", addr).WithField("timeout", timeout).Debug("Dialing")

	start := time.Now()
	conn, err := env.Dialer.DialContext(ctx, "tcp", addr)
	elapsed := time.Since(start)
	if err == nil {
		conn.Close()
		return plugin.OKf("Port %d is OPEN on %s (response time: %dms)", port, req.Host, elapsed.Milliseconds()).
			WithMetrics(plugin.Millis("response_time", elapsed.Milliseconds())), nil
	}

	env.Logger.WithField("error", err).Debug("Dial failed")

	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.As(err, &dnsErr):
		return plugin.Criticalf("Cannot resolve hostname %s - DNS error", req.Host), nil
	case isRefused(err):
		return plugin.Criticalf("Port %d is CLOSED on %s", port, req.Host).
			WithMetrics(plugin.Millis("response_time", 0)), nil
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return plugin.Criticalf("Port %d on %s - Connection timeout after %ds", port, req.Host, int(timeout.Seconds())), nil
	default:
		return plugin.Criticalf("Port check failed - %v", err), nil
	}
}
