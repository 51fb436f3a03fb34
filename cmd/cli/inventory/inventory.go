package inventory

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/crucial707/mineops/cmd/cli/client"
	"github.com/crucial707/mineops/cmd/cli/output"
	"github.com/crucial707/mineops/internal/models"
)

// InitInventory registers the inventory command group on the root command.
func InitInventory(rootCmd *cobra.Command) {
	inventoryCmd := &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"resources"},
		Short:   "Manage mine resources",
	}

	inventoryCmd.AddCommand(
		listInventoryCmd(),
		addResourceCmd(),
		updateResourceCmd(),
		deleteResourceCmd(),
		clearCmd(),
		exportCmd(),
	)
	rootCmd.AddCommand(inventoryCmd)
}

type inventoryPage struct {
	client.ListPage[models.Resource]
	TotalQuantity int   `json:"total_quantity"`
	LowStock      []int `json:"low_stock"`
}

// ==========================
// LIST
// ==========================
func listInventoryCmd() *cobra.Command {
	var flags client.ListFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources with the total quantity on hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			var page inventoryPage
			if err := client.Get("/v1/inventory", flags.Values(), &page); err != nil {
				return err
			}
			if flags.JSON {
				return output.PrintJSON(page)
			}

			low := make(map[int]bool, len(page.LowStock))
			for _, id := range page.LowStock {
				low[id] = true
			}
			rows := make([][]interface{}, 0, len(page.Items))
			for _, r := range page.Items {
				flag := ""
				if low[r.ID] {
					flag = "LOW"
				}
				rows = append(rows, []interface{}{r.ID, r.Name, humanize.Comma(int64(r.Used)), humanize.Comma(int64(r.Available)), flag})
			}
			output.RenderTableWithFooter(
				[]string{"ID", "Name", "Used", "Available", ""},
				rows,
				output.PageCaption(page.Page.Page, page.TotalPages, page.TotalItems),
			)
			fmt.Println("Total quantity:", humanize.Comma(int64(page.TotalQuantity)))
			return nil
		},
	}

	flags.Bind(cmd)
	return cmd
}

// ==========================
// ADD / UPDATE
// ==========================
func addResourceCmd() *cobra.Command {
	var in models.ResourceInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a resource",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Name == "" {
				return errors.New("--name is required")
			}
			var created models.Resource
			if err := client.Call(http.MethodPost, "/v1/resources", in, &created); err != nil {
				return err
			}
			fmt.Printf("Resource %d (%s) added.\n", created.ID, created.Name)
			return nil
		},
	}

	bindInput(cmd, &in)
	return cmd
}

func updateResourceCmd() *cobra.Command {
	var in models.ResourceInput

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a resource's name and quantities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resourceID(args[0])
			if err != nil {
				return err
			}
			var updated models.Resource
			if err := client.Call(http.MethodPut, "/v1/resources/"+id, in, &updated); err != nil {
				return err
			}
			fmt.Printf("Resource %d updated: used %d, available %d.\n", updated.ID, updated.Used, updated.Available)
			return nil
		},
	}

	bindInput(cmd, &in)
	return cmd
}

func bindInput(cmd *cobra.Command, in *models.ResourceInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "Resource name")
	cmd.Flags().IntVar(&in.Used, "used", 0, "Quantity used")
	cmd.Flags().IntVar(&in.Available, "available", 0, "Quantity available")
}

// ==========================
// DELETE / CLEAR
// ==========================
func deleteResourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resourceID(args[0])
			if err != nil {
				return err
			}
			if err := client.Call(http.MethodDelete, "/v1/resources/"+id, nil, nil); err != nil {
				return err
			}
			fmt.Println("Resource deleted.")
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	var usedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every resource, or only used-up ones with --used",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := "all"
			if usedOnly {
				scope = "used"
			}
			var out struct {
				Removed int `json:"removed"`
			}
			if err := client.Call(http.MethodDelete, "/v1/resources?scope="+scope, nil, &out); err != nil {
				return err
			}
			fmt.Printf("%d resources removed.\n", out.Removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&usedOnly, "used", false, "Only remove resources with nothing available")
	return cmd
}

// ==========================
// EXPORT
// ==========================
func exportCmd() *cobra.Command {
	var (
		flags client.ListFlags
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save the current inventory page as a PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := client.Download("/v1/inventory/export.png", flags.Values(), &buf); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%s).\n", out, humanize.Bytes(uint64(buf.Len())))
			return nil
		},
	}

	flags.Bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "inventory.png", "Output file")
	return cmd
}

func resourceID(s string) (string, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return "", fmt.Errorf("invalid resource id %q", s)
	}
	return url.PathEscape(strconv.Itoa(id)), nil
}
