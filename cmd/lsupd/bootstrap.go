package main

import (
	"fmt"
	"time"

	"github.com/fcrepo-go/lsup/pkg/layout"
	"github.com/fcrepo-go/lsup/pkg/rdf"
	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the RDF and binary store environments and seed the root resource",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		env, err := openEnv(cfg)
		if err != nil {
			return fmt.Errorf("open rdf environment: %w", err)
		}
		defer env.Close()

		if _, err := openBinStore(cfg); err != nil {
			return fmt.Errorf("open binary store: %w", err)
		}

		l := layout.New()
		txn, err := env.Begin(true)
		if err != nil {
			return err
		}

		exists, err := l.Exists(txn, "/")
		if err != nil {
			txn.Abort()
			return err
		}
		if exists {
			txn.Abort()
			fmt.Println("Root resource already present, nothing to do.")
			return nil
		}

		now := time.Now().UTC()
		subject := rdf.IRI(rdf.ResURI("/"))
		addSet := []rdf.Triple{
			{S: subject, P: rdf.RDFType, O: rdf.LDPResource},
			{S: subject, P: rdf.RDFType, O: rdf.LDPContainer},
			{S: subject, P: rdf.RDFType, O: rdf.LDPBasicContainer},
			{S: subject, P: rdf.RDFType, O: rdf.FcrepoContainer},
			{S: subject, P: rdf.FcrepoCreated, O: rdf.PlainLiteral(now.Format(time.RFC3339Nano))},
			{S: subject, P: rdf.FcrepoCreatedBy, O: rdf.PlainLiteral("system")},
		}
		if err := l.Modify(txn, "/", nil, addSet, layout.ModifyOptions{Timestamp: now}); err != nil {
			txn.Abort()
			return err
		}

		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit bootstrap transaction: %w", err)
		}

		fmt.Printf("Bootstrapped repository at %s (binaries at %s)\n", cfg.RDFStore.Location, cfg.BinaryStore.Path)
		return nil
	},
}
