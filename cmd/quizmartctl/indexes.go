package main

import (
	"context"
	"fmt"

	"github.com/dalemusser/quizmart/internal/app/system/indexes"
	"github.com/dalemusser/quizmart/internal/app/system/validators"
	"github.com/spf13/cobra"
)

func indexesCmd(settings func(*cobra.Command) (Settings, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Manage MongoDB indexes and validators",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create or reconcile every index and collection validator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, db, err := connect(ctx, s)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			if err := indexes.EnsureAll(ctx, db); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			if err := validators.EnsureAll(ctx, db); err != nil {
				return fmt.Errorf("ensure validators: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexes and validators ready on %s\n", s.MongoDatabase)
			return nil
		},
	})
	return cmd
}
