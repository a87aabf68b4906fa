package net

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
)

// OutgoingIP finds the local address other machines on the network should
// use to reach this host. The route to a public address decides when there
// is one; otherwise the interfaces are searched.
func OutgoingIP() (string, error) {
	if conn, err := net.Dial("udp", "8.8.8.8:80"); err == nil {
		defer conn.Close()
		if ua, ok := conn.LocalAddr().(*net.UDPAddr); ok && !ua.IP.IsLoopback() {
			return ua.IP.String(), nil
		}
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	var addrs []net.Addr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		ia, err := iface.Addrs()
		if err != nil {
			continue
		}
		addrs = append(addrs, ia...)
	}
	if ip, ok := pickLANAddr(addrs); ok {
		return ip.String(), nil
	}
	slog.Default().Warn("no LAN address found, share link uses loopback", "component", "net")
	return "127.0.0.1", nil
}

// pickLANAddr prefers a private IPv4 address, then any other global
// unicast IPv4 one. Link-local and loopback addresses are skipped.
func pickLANAddr(addrs []net.Addr) (net.IP, bool) {
	var fallback net.IP
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		ip4 := ip.To4()
		if ip4 == nil || !ip4.IsGlobalUnicast() {
			continue
		}
		if ip4.IsPrivate() {
			return ip4, true
		}
		if fallback == nil {
			fallback = ip4
		}
	}
	return fallback, fallback != nil
}

// ShareLink is the browser editor URL for ip and port.
func ShareLink(ip string, port int) string {
	return fmt.Sprintf("http://%s/", net.JoinHostPort(ip, strconv.Itoa(port)))
}

// PortOf extracts the numeric port from a listen address such as ":8888".
func PortOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(p)
}
