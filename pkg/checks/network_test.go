package checks

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danpilch/hycucheck/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDialer struct {
	err error
}

func (d stubDialer) DialContext(context.Context, string, string) (net.Conn, error) {
	return nil, d.err
}

func portDispatcher(dialer Dialer) *Dispatcher {
	env := testEnv(&fakeAPI{})
	if dialer != nil {
		env.Dialer = dialer
	}
	return NewDispatcher(DefaultRegistry(), env)
}

func portRequest(port string) Request {
	req := baseRequest("port", port)
	req.Host = "127.0.0.1"
	req.Token = ""
	return req
}

func TestPortOpen(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	result := portDispatcher(nil).Dispatch(context.Background(), portRequest(port))

	assert.Equal(t, plugin.OK, result.Severity)
	assert.True(t, strings.HasPrefix(result.Text, fmt.Sprintf("Port %s is OPEN on 127.0.0.1 (response time: ", port)))
	require.Len(t, result.Metrics, 1)
	assert.Equal(t, "response_time", result.Metrics[0].Name)
	assert.Equal(t, "ms", result.Metrics[0].Unit)
}

func TestPortClosed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()

	result := portDispatcher(nil).Dispatch(context.Background(), portRequest(port))
	assert.Equal(t, plugin.Critical, result.Severity)
	assert.Equal(t, fmt.Sprintf("Port %s is CLOSED on 127.0.0.1", port), result.Text)
	assert.Equal(t, "response_time=0ms;;;0;", perf(result))
}

func TestPortFailureModes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		text string
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "127.0.0.1", IsNotFound: true}, "Cannot resolve hostname 127.0.0.1 - DNS error"},
		{"timeout", context.DeadlineExceeded, "Port 8443 on 127.0.0.1 - Connection timeout after 5s"},
		{"other", errors.New("too many open files"), "Port check failed - too many open files"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := portDispatcher(stubDialer{err: tc.err}).Dispatch(context.Background(), portRequest("8443"))
			assert.Equal(t, plugin.Critical, result.Severity)
			assert.Equal(t, tc.text, result.Text)
		})
	}
}

func TestPortRequiresNumber(t *testing.T) {
	d := portDispatcher(stubDialer{err: errors.New("dialed")})
	result := d.Dispatch(context.Background(), portRequest(""))
	assert.Equal(t, plugin.Unknown, result.Severity)
	assert.Equal(t, "Missing required argument: -n name (required for type 'port')", result.Text)
}

func TestPortDefaultsAndTimeoutCap(t *testing.T) {
	c := NewPortCheck()

	p, err := c.port(portRequest("port"))
	require.NoError(t, err)
	assert.Equal(t, 8443, p)

	req := portRequest("22")
	req.Timeout = 100 * time.Second
	assert.Equal(t, 30*time.Second, portTimeout(req))
	req.Timeout = 3 * time.Second
	assert.Equal(t, 3*time.Second, portTimeout(req))
}
