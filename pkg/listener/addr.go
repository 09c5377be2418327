package listener

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// resolveBindIP turns a bind address into an IP. An empty host means all
// IPv4 interfaces.
func resolveBindIP(ctx context.Context, host string) (net.IP, error) {
	if host == "" {
		return net.IPv4zero, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses for %q", host)
	}
	return addrs[0].IP, nil
}

func buildURI(scheme Scheme, host string, port int) *url.URL {
	return &url.URL{
		Scheme: string(scheme),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
	}
}

func portOf(u *url.URL) int {
	p, _ := strconv.Atoi(u.Port())
	return p
}

func listenerPort(ln net.Listener) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	_, p, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(p)
	return n
}
