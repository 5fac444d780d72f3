package cmd

import (
	"fmt"

	"github.com/campusgraph/campusgraph/api/schemas"
	"github.com/campusgraph/campusgraph/internal/config"
	"github.com/campusgraph/campusgraph/internal/directory"
	"github.com/campusgraph/campusgraph/internal/graph"
	"github.com/campusgraph/campusgraph/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// seedEntry is one identity row in a seed file.
type seedEntry struct {
	Name       string `mapstructure:"name"`
	Email      string `mapstructure:"email"`
	Kind       string `mapstructure:"kind"`
	Department string `mapstructure:"department"`
	Branch     string `mapstructure:"branch"`
	Course     string `mapstructure:"course"`
}

// seedFile is the YAML layout `campusgraph seed -f` consumes.
type seedFile struct {
	Departments []schemas.Department `mapstructure:"departments"`
	People      []seedEntry          `mapstructure:"people"`
}

var seedFilePath string

// seedCmd loads departments and identities from a YAML file into the
// configured store. Registration is idempotent: departments merge by
// id, identities by email.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Register departments and identities from a seed file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		logger := observability.GetLogger()

		v := viper.New()
		v.SetConfigFile(seedFilePath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading seed file: %w", err)
		}
		var seed seedFile
		if err := v.Unmarshal(&seed); err != nil {
			return fmt.Errorf("error unmarshaling seed file: %w", err)
		}

		store, err := graph.NewStore(cfg.Neo4j, logger)
		if err != nil {
			return err
		}
		defer store.Close(cmd.Context())

		dir := directory.New(store, logger)
		for _, dept := range seed.Departments {
			if err := dir.RegisterDepartment(cmd.Context(), dept); err != nil {
				return fmt.Errorf("department %q: %w", dept.ID, err)
			}
		}
		for _, p := range seed.People {
			kind, err := schemas.ParseIdentityKind(p.Kind)
			if err != nil {
				return fmt.Errorf("person %q: %w", p.Email, err)
			}
			id := schemas.Identity{Name: p.Name, Email: p.Email, Kind: kind}
			if err := dir.RegisterIdentity(cmd.Context(), id, p.Department, p.Branch, p.Course); err != nil {
				return fmt.Errorf("person %q: %w", p.Email, err)
			}
		}

		logger.Info("Seed complete",
			zap.Int("departments", len(seed.Departments)),
			zap.Int("people", len(seed.People)),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFilePath, "file", "f", "seed.yaml", "seed file to load")
}
