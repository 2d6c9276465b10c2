package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alaminislam-stack/wash2gather/internal/ui"
	"github.com/Alaminislam-stack/wash2gather/internal/version"
)

var flagConfigFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "wash2gather",
	Short:   "Watch YouTube together with a friend, in sync, over WebRTC",
	Long:    `wash2gather pairs you with one other viewer through a relay server, then keeps play, pause, seek and video changes in sync over a direct WebRTC data channel, with a chat on the side. Browser viewers and terminal viewers can share a room.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", "", "Config file (default ~/.config/wash2gather/config.yaml)")
}
