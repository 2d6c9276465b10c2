package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alaminislam-stack/wash2gather/internal/config"
	"github.com/Alaminislam-stack/wash2gather/internal/relay"
	"github.com/Alaminislam-stack/wash2gather/internal/session"
	"github.com/Alaminislam-stack/wash2gather/internal/ui"
)

const statusTimeout = 5 * time.Second

var (
	flagStatusServer string
	flagStatusOutput string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show relay server room and connection counts",
	Long: `Query a relay server for its live counters.

Examples:
  wash2gather status
  wash2gather status --server relay.example.com --output csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(config.Options{Server: flagStatusServer})
		if err != nil {
			return err
		}

		stats, err := fetchStats(cmd.Context(), cfg.HTTPURL())
		if err != nil {
			return session.NewError("fetch stats", err)
		}

		if flagStatusOutput == "" {
			fmt.Println(ui.StatsView(cfg.Server, stats))
			return nil
		}
		return ui.WriteStats(os.Stdout, flagStatusOutput, cfg.Server, stats)
	},
}

// fetchStats reads the relay's /stats endpoint.
func fetchStats(ctx context.Context, baseURL string) (relay.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/stats", nil)
	if err != nil {
		return relay.Stats{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return relay.Stats{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return relay.Stats{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var stats relay.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return relay.Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&flagStatusServer, "server", "S", "", "Relay server (host[:port] or ws:// URL)")
	statusCmd.Flags().StringVarP(&flagStatusOutput, "output", "o", "", "Plain output: table, csv or markdown")
}
