// Command lsupd is the repository's admin CLI: an external collaborator
// per spec §1, standing in for the HTTP router that would otherwise
// drive the resource API. It bootstraps a store, and runs the
// integrity, fixity, and index-rebuild maintenance operations that a
// running server delegates to an operator rather than performing
// inline.
package main

import (
	"fmt"
	"os"

	"github.com/fcrepo-go/lsup/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version is set via ldflags at build time.
	Version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "lsupd",
	Short:   "lsupd - Linked Data Platform repository core, admin CLI",
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the repository's YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(integrityCheckCmd)
	rootCmd.AddCommand(fixityCheckCmd)
	rootCmd.AddCommand(rebuildIndicesCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOut})
}
