package control

import (
	"strings"
	"time"

	"lecturenotes/internal/client"
	"lecturenotes/internal/config"

	"github.com/spf13/cobra"
)

// serverURL turns client.api_base ("http://host:port/api") into the server root.
func serverURL(cfg *config.Config) string {
	base := strings.TrimRight(strings.TrimSpace(cfg.Client.APIBase), "/")
	if base == "" {
		base = "http://" + cfg.Server.Addr
	}
	return strings.TrimSuffix(base, "/api")
}

func loadClient(cfgPath string) (*config.Config, *client.Client, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(serverURL(cfg))
	if err != nil {
		return nil, nil, err
	}
	return cfg, c, nil
}

func pollInterval(cfg *config.Config) time.Duration {
	if cfg.Client.PollIntervalMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(cfg.Client.PollIntervalMS) * time.Millisecond
}

// NewServiceCmd manages the launchd/systemd user service.
func NewServiceCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the user service (launchd on macOS, systemd elsewhere)",
	}
	cmd.AddCommand(newServiceInstallCmd(cfgPath))
	cmd.AddCommand(newServiceUninstallCmd())
	cmd.AddCommand(newServiceStatusCmd())
	return cmd
}
