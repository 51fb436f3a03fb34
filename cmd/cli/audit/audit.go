package audit

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/mineops/cmd/cli/client"
	"github.com/crucial707/mineops/cmd/cli/output"
	"github.com/crucial707/mineops/internal/models"
)

// InitAudit registers the audit command group on the root command.
func InitAudit(rootCmd *cobra.Command) {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Browse the audit log",
	}
	auditCmd.AddCommand(listAuditCmd())
	rootCmd.AddCommand(auditCmd)
}

type auditPage struct {
	client.ListPage[models.AuditEntry]
	Action  string   `json:"action"`
	Actions []string `json:"actions"`
}

func listAuditCmd() *cobra.Command {
	var (
		flags  client.ListFlags
		action string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries",
		Long:  "List audit entries. --action filters to one exact action such as \"Login\".",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := flags.Values()
			if action != "" {
				q.Set("action", action)
			}

			var page auditPage
			if err := client.Get("/v1/audit", q, &page); err != nil {
				return err
			}
			if flags.JSON {
				return output.PrintJSON(page)
			}

			rows := make([][]interface{}, 0, len(page.Items))
			for _, e := range page.Items {
				rows = append(rows, []interface{}{e.ID, e.User, e.Action, e.Timestamp.Local().Format("2006-01-02 15:04"), e.Details})
			}
			output.RenderTableWithFooter(
				[]string{"ID", "User", "Action", "Timestamp", "Details"},
				rows,
				output.PageCaption(page.Page.Page, page.TotalPages, page.TotalItems),
			)
			if len(page.Actions) > 0 {
				fmt.Println("Actions:", strings.Join(page.Actions, ", "))
			}
			return nil
		},
	}

	flags.Bind(cmd)
	cmd.Flags().StringVar(&action, "action", "", "Show only this action")
	return cmd
}
