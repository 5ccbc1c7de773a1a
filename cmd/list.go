package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"facturas/internal/config"
	"facturas/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices stored in the database",
	Example: `  facturas list
  facturas list --db facturas.db`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("db", "", "SQLite database path (default: DB_PATH or facturas.db)")
}

func runList(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	db, err := store.Open(cmd.Context(), dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	records, err := db.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No invoices stored.")
		return nil
	}

	fmt.Printf("%-14s %-14s %-12s %-12s %-30s %12s  %s\n",
		"NUMERO", "CAE", "FECHA", "CUIT EMISOR", "RECEPTOR", "TOTAL", "ESTADO")
	for _, r := range records {
		status := "ok"
		if r.NeedsReview {
			status = "revisar"
		}
		fmt.Printf("%-14s %-14s %-12s %-12s %-30s %12s  %s\n",
			r.InvoiceNumber, r.CAE, r.EmissionDate, r.IssuerTaxID,
			truncate(r.ReceiverName, 30), r.TotalAmount, status)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
