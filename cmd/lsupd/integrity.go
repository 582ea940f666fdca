package main

import (
	"fmt"

	"github.com/fcrepo-go/lsup/pkg/layout"
	"github.com/spf13/cobra"
)

var integrityCheckCmd = &cobra.Command{
	Use:   "integrity-check",
	Short: "Scan the store for object references that do not resolve to a live resource",
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

		txn, err := env.Begin(false)
		if err != nil {
			return err
		}
		defer txn.Abort()

		violations, err := layout.New().FindRefIntViolations(txn)
		if err != nil {
			return err
		}

		if len(violations) == 0 {
			fmt.Println("No referential-integrity violations found.")
			return nil
		}
		fmt.Printf("Found %d referential-integrity violation(s):\n", len(violations))
		for _, t := range violations {
			fmt.Printf("  %s %s %s\n", t.S, t.P, t.O)
		}
		return nil
	},
}
