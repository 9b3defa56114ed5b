package init

import (
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize vsireport configuration",
	}

	cmd.AddCommand(NewConfigCmd())

	return cmd
}
