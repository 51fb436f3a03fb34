package notifications

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/crucial707/mineops/cmd/cli/client"
	"github.com/crucial707/mineops/cmd/cli/output"
	"github.com/crucial707/mineops/internal/models"
)

// InitNotifications registers the notifications command group on the root command.
func InitNotifications(rootCmd *cobra.Command) {
	notificationsCmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "Read and manage notifications",
	}

	notificationsCmd.AddCommand(
		listCmd(),
		markCmd("read", "Mark a notification as read"),
		markCmd("unread", "Mark a notification as unread"),
		deleteCmd(),
		bulkCmd(),
	)
	rootCmd.AddCommand(notificationsCmd)
}

type notificationPage struct {
	client.ListPage[models.Notification]
	Filter string `json:"filter"`
	Unread int    `json:"unread"`
}

type counts struct {
	Unread int `json:"unread"`
	Total  int `json:"total"`
}

func listCmd() *cobra.Command {
	var (
		flags  client.ListFlags
		filter string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := flags.Values()
			if filter != "" {
				q.Set("filter", filter)
			}

			var page notificationPage
			if err := client.Get("/v1/notifications", q, &page); err != nil {
				return err
			}
			if flags.JSON {
				return output.PrintJSON(page)
			}
			if page.Info != "" && page.TotalItems == 0 {
				fmt.Println("No notifications.")
				return nil
			}

			rows := make([][]interface{}, 0, len(page.Items))
			for _, n := range page.Items {
				state := "unread"
				if n.Read {
					state = "read"
				}
				rows = append(rows, []interface{}{n.ID, state, n.Message, humanize.Time(n.Timestamp)})
			}
			output.RenderTableWithFooter(
				[]string{"ID", "State", "Message", "When"},
				rows,
				output.PageCaption(page.Page.Page, page.TotalPages, page.TotalItems),
			)
			fmt.Printf("%d unread.\n", page.Unread)
			return nil
		},
	}

	flags.Bind(cmd)
	cmd.Flags().StringVar(&filter, "filter", "", "all, read or unread")
	return cmd
}

func markCmd(state, short string) *cobra.Command {
	return &cobra.Command{
		Use:   state + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c counts
			if err := client.Call(http.MethodPost, "/v1/notifications/"+url.PathEscape(args[0])+"/"+state, nil, &c); err != nil {
				return err
			}
			fmt.Printf("Marked %s. %d of %d unread.\n", state, c.Unread, c.Total)
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c counts
			if err := client.Call(http.MethodDelete, "/v1/notifications/"+url.PathEscape(args[0]), nil, &c); err != nil {
				return err
			}
			fmt.Printf("Deleted. %d notifications left.\n", c.Total)
			return nil
		},
	}
}

func bulkCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "bulk <read|unread|delete>",
		Short:     "Apply an action to every notification",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"read", "unread", "delete"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var c counts
			if err := client.Call(http.MethodPost, "/v1/notifications/bulk", map[string]string{"action": args[0]}, &c); err != nil {
				return err
			}
			fmt.Printf("Bulk %s applied. %d of %d unread.\n", args[0], c.Unread, c.Total)
			return nil
		},
	}
}
