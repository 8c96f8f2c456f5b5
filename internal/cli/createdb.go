package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/analogrelay/go-native-export/internal/results"
)

// createDbCmd represents the createDb command
var createDbCmd = &cobra.Command{
	Use:   "createDb",
	Short: "Create the Cosmos DB database and container for results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		client, err := results.NewCosmosClient(cfg.Cosmos.Endpoint, cfg.Cosmos.Key)
		if err != nil {
			return fmt.Errorf("failed to create Cosmos client: %w", err)
		}
		publisher := results.NewCosmosPublisher(client, cfg.Cosmos.Database, cfg.Cosmos.Container)
		if err := publisher.EnsureContainer(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database %s and container %s ready.\n", cfg.Cosmos.Database, cfg.Cosmos.Container)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createDbCmd)
}
