package cmd

import (
	"github.com/campusgraph/campusgraph/internal/config"
	"github.com/campusgraph/campusgraph/internal/graph"
	"github.com/campusgraph/campusgraph/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd installs the uniqueness constraints the graph model
// relies on: person emails, department ids, service names, comment ids.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Install the schema constraints on the configured Neo4j database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		logger := observability.GetLogger()

		store, err := graph.NewStore(cfg.Neo4j, logger)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		if err := store.EnsureConstraints(cmd.Context()); err != nil {
			return err
		}
		logger.Info("Migration complete", zap.String("uri", cfg.Neo4j.URI))
		return nil
	},
}
