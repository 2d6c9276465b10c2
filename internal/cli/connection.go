package cli

import (
	"fmt"
	"log/slog"

	"github.com/Alaminislam-stack/wash2gather/internal/config"
	"github.com/Alaminislam-stack/wash2gather/internal/negotiation"
	"github.com/Alaminislam-stack/wash2gather/internal/session"
	"github.com/Alaminislam-stack/wash2gather/internal/ui"
	"github.com/Alaminislam-stack/wash2gather/internal/utils"
)

// LoadConfig loads the layered configuration and validates relay settings.
func LoadConfig(opts config.Options) (*config.Config, error) {
	opts.ConfigFile = utils.FirstNonEmpty(opts.ConfigFile, flagConfigFile)

	cfg, err := config.Load(opts)
	if err != nil {
		return nil, session.NewError("load config", err)
	}

	if cfg.ForceRelay && cfg.GetTURNServers() == nil {
		return nil, fmt.Errorf("cannot force relay mode without TURN server configured")
	}

	return cfg, nil
}

// iceConfig builds the ICE settings for cfg. Relay mode is switched on
// automatically behind VPNs and CGNAT when a TURN server is available.
func iceConfig(cfg *config.Config) negotiation.ICEConfig {
	user, pass := cfg.GetTURNCredentials()
	ice := negotiation.ICEConfig{
		STUNServers:  cfg.GetSTUNServers(),
		TURNServers:  cfg.GetTURNServers(),
		TURNUsername: user,
		TURNPassword: pass,
		ForceRelay:   cfg.ForceRelay,
	}

	if !ice.ForceRelay && len(ice.TURNServers) > 0 {
		if force, iface := utils.ShouldForceRelay(); force {
			slog.Info("forcing relay mode", "interface", iface)
			ui.PrintWarning(fmt.Sprintf("VPN/CGNAT detected on %s, using TURN relay", iface))
			ice.ForceRelay = true
		}
	}

	return ice
}

// peerFactory creates pion peers for the session.
func peerFactory(ice negotiation.ICEConfig) session.PeerFactory {
	return func(hooks negotiation.Hooks) (negotiation.Peer, error) {
		return negotiation.NewPionPeer(ice, hooks)
	}
}
