package cmd

import (
	"github.com/campusgraph/campusgraph/internal/config"
	"github.com/campusgraph/campusgraph/internal/graph"
	"github.com/campusgraph/campusgraph/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// pingCmd verifies connectivity against the configured Neo4j instance.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify connectivity to the configured Neo4j database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		logger := observability.GetLogger()

		store, err := graph.NewStore(cfg.Neo4j, logger)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		if err := store.Verify(cmd.Context()); err != nil {
			return err
		}
		logger.Info("Neo4j is reachable",
			zap.String("uri", cfg.Neo4j.URI),
			zap.String("database", cfg.Neo4j.Database),
		)
		return nil
	},
}
