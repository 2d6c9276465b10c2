package utils

import (
	"net"
	"strings"
)

// tunnelHints are interface name fragments of VPN and tunnel adapters.
var tunnelHints = []string{"tun", "tap", "wg", "ppp", "warp"}

// ShouldForceRelay checks if the host is likely behind a restrictive VPN or
// CGNAT, where direct peer paths rarely work. It returns the interface that
// triggered the decision.
func ShouldForceRelay() (bool, string) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return false, ""
	}

	// Cloudflare WARP, Tailscale and carrier grade NAT live in 100.64.0.0/10.
	_, cgnatBlock, _ := net.ParseCIDR("100.64.0.0/10")

	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		name := strings.ToLower(iface.Name)
		for _, hint := range tunnelHints {
			if strings.Contains(name, hint) {
				return true, iface.Name
			}
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && cgnatBlock.Contains(ipnet.IP) {
				return true, iface.Name
			}
		}
	}

	return false, ""
}
