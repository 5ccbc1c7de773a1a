package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"facturas/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "facturas",
	Short: "facturas - extract structured data from AFIP invoice documents",
	Long: `facturas recovers structured records from AFIP "Factura C" family
invoices: issuer and receiver identities, totals, IVA condition, CAE
authorization code, billing period and the line-item table.

The extraction is heuristic and best effort: the linearized text order
of these documents varies between files, so fields are located through
anchors and bounded proximity scans and every miss degrades to an
explicit fallback value instead of failing the document.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("facturas CLI executed")

		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
