package root

import (
	"github.com/spf13/cobra"
)

// RootCmd is the top-level mineops command.
var RootCmd = &cobra.Command{
	Use:           "mineops",
	Short:         "Mine operations dashboard CLI",
	Long:          "Command line interface for the mine operations dashboard API: audit log, inventory, users and notifications.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GetRoot returns RootCmd so command packages can register on it.
func GetRoot() *cobra.Command {
	return RootCmd
}
