package app

import (
	"fmt"
	"log"

	"github.com/grandcat/zeroconf"
)

const (
	serviceType   = "_inertialreplay._tcp"
	serviceDomain = "local."
)

// serviceText is the TXT record advertised with the replay server.
func serviceText() []string {
	return []string{
		"version=1",
		"path=/",
		"ws=/ws",
	}
}

// Advertise announces the replay server over mDNS so browsers and the
// display can find it on the local network. Call Shutdown on the result
// when the server stops.
func Advertise(instance string, port int) (*zeroconf.Server, error) {
	server, err := zeroconf.Register(instance, serviceType, serviceDomain, port, serviceText(), nil)
	if err != nil {
		return nil, fmt.Errorf("mDNS register: %w", err)
	}
	log.Printf("replay: advertising %s.%s%s on port %d", instance, serviceType, serviceDomain, port)
	return server, nil
}
