package main

import (
	"fmt"

	"github.com/fcrepo-go/lsup/pkg/apierr"
	"github.com/fcrepo-go/lsup/pkg/layout"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/spf13/cobra"
)

var fixityCheckCmd = &cobra.Command{
	Use:   "fixity-check <uid>",
	Short: "Recompute an LDP-NR's stored digest and compare it with its recorded premis:hasMessageDigest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid := args[0]

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		env, err := openEnv(cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		bin, err := openBinStore(cfg)
		if err != nil {
			return err
		}

		txn, err := env.Begin(false)
		if err != nil {
			return err
		}
		defer txn.Abort()

		meta, err := layout.New().GetMetadata(txn, uid, true)
		if err != nil {
			return err
		}

		subject := rdf.IRI(rdf.ResURI(uid))
		var digest string
		for _, t := range meta.Triples {
			if t.S == subject && t.P == rdf.PremisHasMessageDigest {
				digest = t.O.Value
			}
		}
		if digest == "" {
			return fmt.Errorf("%s has no recorded premis:hasMessageDigest (not an LDP-NR?)", uid)
		}

		ok, recomputed, err := bin.Fixity(digest)
		if err != nil {
			return fmt.Errorf("fixity check failed: %w", err)
		}
		if !ok {
			fmt.Printf("FAIL: %s recorded digest %s does not match stored content\n", uid, digest)
			return &apierr.ChecksumValidation{UID: uid, Expected: digest, Got: recomputed}
		}
		fmt.Printf("OK: %s matches recorded digest %s\n", uid, digest)
		return nil
	},
}
