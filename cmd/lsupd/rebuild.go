package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rebuildIndicesCmd = &cobra.Command{
	Use:   "rebuild-indices",
	Short: "Recompute the six lookup indices and the context inverse from the primary data environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		env, err := openEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		txn, err := env.Begin(true)
		if err != nil {
			return err
		}

		n, err := txn.RebuildIndices()
		if err != nil {
			txn.Abort()
			return fmt.Errorf("rebuild indices: %w", err)
		}
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit rebuilt indices: %w", err)
		}

		fmt.Printf("Rebuilt indices for %d triples.\n", n)
		return nil
	},
}
