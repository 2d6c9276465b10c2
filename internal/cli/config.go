package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/Alaminislam-stack/wash2gather/internal/config"
	"github.com/Alaminislam-stack/wash2gather/internal/session"
	"github.com/Alaminislam-stack/wash2gather/internal/ui"
)

var flagConfigForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the wash2gather config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfigFile
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return session.NewError("locate config", err)
			}
		}

		if _, err := os.Stat(path); err == nil && !flagConfigForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return session.NewError("stat config", err)
		}

		if err := config.Save(config.Defaults(), path); err != nil {
			return session.NewError("save config", err)
		}
		ui.PrintSuccessf("Config written to %s", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(config.Options{})
		if err != nil {
			return err
		}

		shown := *cfg
		if shown.TURNPass != "" {
			shown.TURNPass = "********"
		}
		out, err := yaml.Marshal(&shown)
		if err != nil {
			return session.NewError("encode config", err)
		}
		fmt.Print(string(out))
		fmt.Println(ui.MutedStyle.Render("# websocket: " + cfg.WebSocketURL))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().BoolVarP(&flagConfigForce, "force", "f", false, "Overwrite an existing file")
}
