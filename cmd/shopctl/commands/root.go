package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/Skotchmaster/shopsplit/pkg/config"
	"github.com/Skotchmaster/shopsplit/pkg/shopclient"
	"github.com/spf13/cobra"
)

type options struct {
	gateway     string
	sessionFile string
	timeout     time.Duration
}

func (o *options) client() *shopclient.Client {
	return shopclient.New(o.gateway, o.timeout)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shopctl-session.json"
	}
	return filepath.Join(home, ".shopctl", "session.json")
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	config.LoadDotEnv()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "shopctl",
		Short:         "Talk to the shop through its gateway",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.gateway, "gateway", config.EnvDefault("SHOPCTL_GATEWAY", "http://localhost:5003"), "gateway base URL")
	rootCmd.PersistentFlags().StringVar(&opts.sessionFile, "session", config.EnvDefault("SHOPCTL_SESSION", defaultSessionFile()), "file holding the session tokens")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	rootCmd.AddCommand(
		newRegisterCommand(opts),
		newLoginCommand(opts),
		newRefreshCommand(opts),
		newLogoutCommand(opts),
		newOrderCommand(opts),
	)

	return rootCmd
}
