package main

import (
	"github.com/fcrepo-go/lsup/pkg/binstore"
	"github.com/fcrepo-go/lsup/pkg/config"
	"github.com/fcrepo-go/lsup/pkg/store"
	"github.com/spf13/cobra"
)

// loadConfig resolves the --config flag against config.Default, the
// same precedence cmd/warren's apply command uses for its manifest
// flags layered over compiled-in defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func openEnv(cfg config.Config) (*store.Environment, error) {
	return store.Open(cfg.RDFStore.Location, store.Options{MaxSpareTxns: cfg.Workers})
}

func openBinStore(cfg config.Config) (*binstore.Store, error) {
	return binstore.Open(cfg.BinaryStore.Path, binstore.Options{
		BranchLength: cfg.BinaryStore.PairtreeBranchLength,
		Branches:     cfg.BinaryStore.PairtreeBranches,
	})
}
