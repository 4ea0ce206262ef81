package app

import (
	"net"
)

// networkInterface is the slice of net.Interface the LAN lookup needs
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type hostInterface struct{ net.Interface }

func (h hostInterface) Flags() net.Flags { return h.Interface.Flags }

// networkProvider lists the host's interfaces
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]networkInterface, 0, len(ifaces))
	for _, iface := range ifaces {
		out = append(out, &hostInterface{iface})
	}
	return out, nil
}

// lanAddresses returns the IPv4 unicast addresses of interfaces that are up
func lanAddresses(provider networkProvider) []net.IP {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return nil
	}
	var ips []net.IP
	for _, iface := range ifaces {
		if f := iface.Flags(); f&net.FlagUp == 0 || f&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() {
				ips = append(ips, ip4)
			}
		}
	}
	return ips
}

// getPreferredIP picks the host address share links point at when no
// public base URL is configured: a private address first, then any
// address, then "localhost".
func getPreferredIP(provider networkProvider) string {
	ips := lanAddresses(provider)
	for _, ip := range ips {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(ips) > 0 {
		return ips[0].String()
	}
	return "localhost"
}
