package users

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crucial707/mineops/cmd/cli/client"
	"github.com/crucial707/mineops/cmd/cli/output"
	"github.com/crucial707/mineops/internal/models"
)

// ==========================
// CLI Command Init
// ==========================

// InitUsers registers the users command group on the root command.
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage operators",
		Long:  "List, add, edit and remove operators held by the backend user service.",
	}

	usersCmd.AddCommand(
		listUsersCmd(),
		addUserCmd(),
		updateUserCmd(),
		deleteUserCmd(),
		bulkCmd(),
	)
	rootCmd.AddCommand(usersCmd)
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	var flags client.ListFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var page client.ListPage[models.User]
			if err := client.Get("/v1/users", flags.Values(), &page); err != nil {
				return err
			}
			if flags.JSON {
				return output.PrintJSON(page)
			}

			rows := make([][]interface{}, 0, len(page.Items))
			for _, u := range page.Items {
				rows = append(rows, []interface{}{u.ID, u.Username, u.Email, u.Role})
			}
			output.RenderTableWithFooter(
				[]string{"ID", "Username", "Email", "Role"},
				rows,
				output.PageCaption(page.Page.Page, page.TotalPages, page.TotalItems),
			)
			if page.Warning != "" {
				fmt.Println("Warning:", page.Warning)
			}
			return nil
		},
	}

	flags.Bind(cmd)
	return cmd
}

// ==========================
// Add / Update
// ==========================
func addUserCmd() *cobra.Command {
	var in models.UserInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var res changeResult
			if err := client.Call(http.MethodPost, "/v1/users", in, &res); err != nil {
				return err
			}
			fmt.Printf("User %s added. %d users.\n", in.Username, len(res.Items))
			res.warn()
			return nil
		},
	}

	bindInput(cmd, &in)
	return cmd
}

func updateUserCmd() *cobra.Command {
	var in models.UserInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a user's name, email and role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := userID(args[0])
			if err != nil {
				return err
			}
			var res changeResult
			if err := client.Call(http.MethodPut, "/v1/users/"+strconv.Itoa(id), in, &res); err != nil {
				return err
			}
			fmt.Printf("User %d updated.\n", id)
			res.warn()
			return nil
		},
	}

	bindInput(cmd, &in)
	return cmd
}

func bindInput(cmd *cobra.Command, in *models.UserInput) {
	cmd.Flags().StringVar(&in.Username, "username", "", "Username")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar((*string)(&in.Role), "role", string(models.RoleWorker), "Admin, Supervisor or Worker")
}

// ==========================
// Delete / Bulk
// ==========================
func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := userID(args[0])
			if err != nil {
				return err
			}
			var res changeResult
			if err := client.Call(http.MethodDelete, "/v1/users/"+strconv.Itoa(id), nil, &res); err != nil {
				return err
			}
			fmt.Printf("User %d deleted.\n", id)
			res.warn()
			return nil
		},
	}
}

func bulkCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "bulk <activate|deactivate|delete>",
		Short:     "Apply an action to every loaded user",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{models.BulkActivate, models.BulkDeactivate, models.BulkDelete},
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"action": args[0]}
			var res changeResult
			if err := client.Call(http.MethodPost, "/v1/users/bulk-action", body, &res); err != nil {
				return err
			}
			fmt.Printf("Bulk %s applied.\n", args[0])
			res.warn()
			return nil
		},
	}
}

// changeResult is the server's answer to an accepted user change.
type changeResult struct {
	Items   []models.User `json:"items"`
	Warning string        `json:"warning"`
}

func (r changeResult) warn() {
	if r.Warning != "" {
		fmt.Println("Warning:", r.Warning)
	}
}

func userID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}
