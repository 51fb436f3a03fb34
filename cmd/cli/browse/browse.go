package browse

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/crucial707/mineops/cmd/cli/client"
	"github.com/crucial707/mineops/internal/listview"
	"github.com/crucial707/mineops/internal/models"
	"github.com/crucial707/mineops/internal/notifications"
	"github.com/crucial707/mineops/internal/repo"
	"github.com/crucial707/mineops/internal/resources"
	"github.com/crucial707/mineops/internal/tui"
	"github.com/crucial707/mineops/internal/users"
)

// InitBrowse registers the interactive browse command on the root command.
func InitBrowse(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:       "browse <audit|inventory|users|notifications>",
		Short:     "Browse a table interactively",
		Long:      "Load a table from the dashboard API and search, sort and page through it in the terminal.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"audit", "inventory", "users", "notifications"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "audit":
				return tui.Run(auditBrowser())
			case "inventory":
				return tui.Run(inventoryBrowser())
			case "users":
				return tui.Run(usersBrowser())
			case "notifications":
				return tui.Run(notificationsBrowser())
			}
			return fmt.Errorf("unknown table %q", args[0])
		},
	})
}

// loader fetches the whole table in pages of the schema's largest size.
func loader[T any](path string, schema listview.Schema[T]) tui.Loader[T] {
	return func(context.Context) ([]T, error) {
		return client.FetchAll[T](path, schema.MaxPageSize, nil)
	}
}

func auditFilters(entries []models.AuditEntry) []tui.Filter[models.AuditEntry] {
	actions := repo.AuditActions(entries)
	out := make([]tui.Filter[models.AuditEntry], len(actions))
	for i, a := range actions {
		out[i] = tui.Filter[models.AuditEntry]{Label: "action " + a, Match: repo.ActionIs(a)}
	}
	return out
}

func notificationFilters([]models.Notification) []tui.Filter[models.Notification] {
	var out []tui.Filter[models.Notification]
	for _, name := range []string{notifications.FilterUnread, notifications.FilterRead} {
		match, err := notifications.Match(name)
		if err != nil {
			continue
		}
		out = append(out, tui.Filter[models.Notification]{Label: name, Match: match})
	}
	return out
}

func auditBrowser() *tui.Browser[models.AuditEntry] {
	schema := repo.AuditSchema()
	return tui.New("Audit log", schema, []tui.Column[models.AuditEntry]{
		{Title: "User", Field: "user", Width: 16, Value: func(e models.AuditEntry) string { return e.User }},
		{Title: "Action", Field: "action", Width: 20, Value: func(e models.AuditEntry) string { return e.Action }},
		{Title: "When", Field: "timestamp", Width: 18, Value: func(e models.AuditEntry) string {
			return e.Timestamp.Local().Format("2006-01-02 15:04")
		}},
		{Title: "Details", Width: 30, Value: func(e models.AuditEntry) string { return e.Details }},
	}, loader("/v1/audit", schema)).WithFilters(auditFilters)
}

func inventoryBrowser() *tui.Browser[models.Resource] {
	schema := resources.Schema()
	return tui.New("Inventory", schema, []tui.Column[models.Resource]{
		{Title: "Name", Field: "name", Width: 20, Value: func(r models.Resource) string { return r.Name }},
		{Title: "Used", Field: "used", Width: 10, Value: func(r models.Resource) string { return humanize.Comma(int64(r.Used)) }},
		{Title: "Available", Field: "available", Width: 10, Value: func(r models.Resource) string { return humanize.Comma(int64(r.Available)) }},
	}, loader("/v1/resources", schema))
}

func usersBrowser() *tui.Browser[models.User] {
	schema := users.Schema()
	return tui.New("Users", schema, []tui.Column[models.User]{
		{Title: "ID", Field: "id", Width: 5, Value: func(u models.User) string { return strconv.Itoa(u.ID) }},
		{Title: "Username", Field: "username", Width: 16, Value: func(u models.User) string { return u.Username }},
		{Title: "Email", Field: "email", Width: 26, Value: func(u models.User) string { return u.Email }},
		{Title: "Role", Field: "role", Width: 11, Value: func(u models.User) string { return string(u.Role) }},
	}, loader("/v1/users", schema))
}

func notificationsBrowser() *tui.Browser[models.Notification] {
	schema := notifications.Schema()
	return tui.New("Notifications", schema, []tui.Column[models.Notification]{
		{Title: "Message", Field: "message", Width: 42, Value: func(n models.Notification) string { return n.Message }},
		{Title: "When", Field: "timestamp", Width: 16, Value: func(n models.Notification) string { return humanize.Time(n.Timestamp) }},
		{Title: "Read", Width: 6, Value: func(n models.Notification) string {
			if n.Read {
				return "yes"
			}
			return ""
		}},
	}, loader("/v1/notifications", schema)).WithFilters(notificationFilters)
}
