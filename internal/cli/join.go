package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Alaminislam-stack/wash2gather/internal/config"
	"github.com/Alaminislam-stack/wash2gather/internal/logging"
	"github.com/Alaminislam-stack/wash2gather/internal/playback"
	"github.com/Alaminislam-stack/wash2gather/internal/session"
	"github.com/Alaminislam-stack/wash2gather/internal/signaling"
	"github.com/Alaminislam-stack/wash2gather/internal/ui"
)

var (
	flagServer   string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
	flagRelay    bool
	flagName     string
	flagLogFile  string
)

var joinCmd = &cobra.Command{
	Use:     "join",
	Aliases: []string{"j"},
	Short:   "Join the watch-together room and start watching",
	Long: `Join the shared watch-together room. The first viewer waits, the second
one connects to them directly and both players stay in sync.

Examples:
  wash2gather join
  wash2gather join --name Sam
  wash2gather join --server relay.example.com --turn turn.example.com --relay`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(config.Options{
			Server:     flagServer,
			STUNServer: flagSTUN,
			TURNServer: flagTURN,
			TURNUser:   flagTURNUser,
			TURNPass:   flagTURNPass,
			Name:       flagName,
			ForceRelay: flagRelay,
		})
		if err != nil {
			return err
		}
		return joinRoom(cmd.Context(), cfg)
	},
}

func joinRoom(ctx context.Context, cfg *config.Config) error {
	closeLog, err := redirectLogs(flagLogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	fmt.Println()
	ui.PrintInfo(fmt.Sprintf("Joining %s as %s", ui.BoldStyle.Render(cfg.Room), cfg.Name))
	spinner := ui.NewConnectionSpinner(fmt.Sprintf("%s Connecting to %s...", ui.IconConnect, cfg.Server))
	spinner.Start()

	client := signaling.NewClient(cfg.WebSocketURL)
	if err := client.Connect(ctx); err != nil {
		spinner.Fail("Could not reach the relay server")
		return session.NewError("connect to server", err)
	}
	defer client.Close()
	spinner.Success("Connected to relay server")

	screen := ui.NewChatUI(cfg.Room, cfg.Name)
	sess := session.New(session.Options{
		Room:     cfg.Room,
		Name:     cfg.Name,
		Signaler: client,
		NewPeer:  peerFactory(iceConfig(cfg)),
		Player:   playback.NewVirtualPlayer(),
		View:     screen,
	})
	screen.Bind(sess)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessErr := make(chan error, 1)
	go func() {
		err := sess.Run(ctx)
		// Take the screen down with the session.
		cancel()
		sessErr <- err
	}()

	uiErr := screen.Run(ctx)
	cancel()

	if err := <-sessErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if uiErr != nil {
		return session.NewError("ui", uiErr)
	}

	ui.PrintSuccess("Left the room")
	return nil
}

// redirectLogs sends logs to path, or to the state directory when path is
// empty, for as long as the chat screen owns the terminal.
func redirectLogs(path string) (func(), error) {
	if path == "" {
		cfgPath, err := config.DefaultPath()
		if err != nil {
			return func() {}, nil
		}
		path = filepath.Join(filepath.Dir(cfgPath), "wash2gather.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, session.NewError("create log dir", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, session.NewError("open log file", err)
	}

	logging.InitWriter(f, slog.LevelInfo)
	return func() {
		logging.Init(slog.LevelWarn)
		f.Close()
	}, nil
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVarP(&flagServer, "server", "S", "", "Relay server (host[:port] or ws:// URL)")
	joinCmd.Flags().StringVarP(&flagSTUN, "stun", "s", "", "Custom STUN server")
	joinCmd.Flags().StringVarP(&flagTURN, "turn", "t", "", "Custom TURN server")
	joinCmd.Flags().StringVarP(&flagTURNUser, "turn-user", "u", "", "TURN username")
	joinCmd.Flags().StringVarP(&flagTURNPass, "turn-pass", "p", "", "TURN password")
	joinCmd.Flags().BoolVarP(&flagRelay, "relay", "r", false, "Force relay mode")
	joinCmd.Flags().StringVarP(&flagName, "name", "n", "", "Name shown on your own chat messages")
	joinCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs here while in the room")
}
