package init

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigContent = `; vsireport configuration file
; Values here are overridden by environment variables (SL_USERNAME,
; SL_APIKEY, SMTP_*, REDIS_*).

[api]
username =
apikey =
; endpoint =
; max_attempts = 0   ; 0 retries forever
; retry_delay = 5s
; detail_pause = 1s

[smtp]
host =
port = 587
username =
password =
from =
; comma-separated recipient list
to =
subject = Daily Provisioning Report

[redis]
addr = localhost:6379
password =
db = 0
`

// NewConfigCmd creates the init config command
func NewConfigCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write a starter config.ini",
		Long:  `Write a starter config.ini in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			const path = "config.ini"
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(defaultConfigContent), 0o600); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.ini")

	return cmd
}
