package net

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_vectorboard._tcp"

// Peer is a browser editor found on the local network.
type Peer struct {
	Name string
	Host string
	Addr net.IP
	Port int
	Info []string
}

// URL is the address a browser opens to reach the peer.
func (p Peer) URL() string {
	return ShareLink(p.Addr.String(), p.Port)
}

// Advertise announces a browser editor on port until the returned server is
// shut down. An empty instance uses the hostname.
func Advertise(instance string, port int, info []string) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}
	if len(info) == 0 {
		info = []string{"VectorBoard"}
	}

	service, err := mdns.NewMDNSService(instance, serviceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	slog.Default().Info("advertising browser editor", "component", "mdns", "instance", instance, "port", port)
	return server, nil
}

// Browse queries the network for editors and calls found for each one with
// an IPv4 address. It returns once timeout elapses or ctx is done; found is
// not called after it returns.
func Browse(ctx context.Context, timeout time.Duration, found func(Peer)) error {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	var mu sync.Mutex
	stopped := false
	go func() {
		defer close(done)
		for e := range entries {
			p, ok := peerOf(e)
			if !ok {
				continue
			}
			mu.Lock()
			if !stopped {
				found(p)
			}
			mu.Unlock()
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errCh := make(chan error, 1)
	go func() { errCh <- mdns.Query(params) }()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
		mu.Lock()
		stopped = true
		mu.Unlock()
		// Query still owns entries until it returns.
		go func() {
			<-errCh
			close(entries)
		}()
		return err
	}
	close(entries)
	<-done
	return err
}

func peerOf(e *mdns.ServiceEntry) (Peer, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Peer{}, false
	}
	if !strings.Contains(e.Name, serviceType) {
		return Peer{}, false
	}
	name := strings.TrimSuffix(e.Name, "."+serviceType+".local.")
	return Peer{
		Name: name,
		Host: e.Host,
		Addr: e.AddrV4,
		Port: e.Port,
		Info: e.InfoFields,
	}, true
}
