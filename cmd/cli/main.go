package main

import (
	"fmt"
	"os"

	"github.com/crucial707/mineops/cmd/cli/audit"
	"github.com/crucial707/mineops/cmd/cli/auth"
	"github.com/crucial707/mineops/cmd/cli/browse"
	"github.com/crucial707/mineops/cmd/cli/inventory"
	"github.com/crucial707/mineops/cmd/cli/notifications"
	"github.com/crucial707/mineops/cmd/cli/root"
	"github.com/crucial707/mineops/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	audit.InitAudit(rootCmd)
	inventory.InitInventory(rootCmd)
	users.InitUsers(rootCmd)
	notifications.InitNotifications(rootCmd)
	browse.InitBrowse(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
