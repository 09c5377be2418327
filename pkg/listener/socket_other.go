//go:build !unix

package listener

import (
	"context"
	"net"
	"strconv"
)

// listen falls back to net.ListenConfig where raw sockets are not
// available; the backlog is left to the OS.
func listen(ctx context.Context, host string, port, _ int) (net.Listener, error) {
	ip, err := resolveBindIP(ctx, host)
	if err != nil {
		return nil, err
	}
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", net.JoinHostPort(ip.String(), strconv.Itoa(port)))
}
