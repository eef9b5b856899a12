package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/quizmart/internal/app/services/attempts"
	"github.com/dalemusser/quizmart/internal/app/services/export"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func attemptsCmd(settings func(*cobra.Command) (Settings, error)) *cobra.Command {
	var (
		userHex string
		quizHex string
		asHex   string
		format  string
		outPath string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "Archived quiz attempts",
	}
	exp := &cobra.Command{
		Use:   "export",
		Short: "Export a user's archived attempts on a quiz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := primitive.ObjectIDFromHex(userHex)
			if err != nil {
				return fmt.Errorf("--user: %w", err)
			}
			quizID, err := primitive.ObjectIDFromHex(quizHex)
			if err != nil {
				return fmt.Errorf("--quiz: %w", err)
			}
			actor := userID
			if asHex != "" {
				if actor, err = primitive.ObjectIDFromHex(asHex); err != nil {
					return fmt.Errorf("--as: %w", err)
				}
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			s, err := settings(cmd)
			if err != nil {
				return err
			}
			log := newLogger(verbose)
			ctx := cmd.Context()
			client, db, err := connect(ctx, s)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			c, err := openCache(ctx, s, db, log)
			if err != nil {
				return err
			}
			defer c.Close()

			svc := export.New(db, attempts.New(c, s.AttemptTTL, log), nil, log)
			file, err := svc.Export(ctx, actor, userID, quizID, f)
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				_, err = cmd.OutOrStdout().Write(file.Body)
				return err
			}
			if err := os.WriteFile(outPath, file.Body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", file.Rows, outPath)
			return nil
		},
	}
	exp.Flags().StringVar(&userHex, "user", "", "user whose attempts to export (required)")
	exp.Flags().StringVar(&quizHex, "quiz", "", "quiz id (required)")
	exp.Flags().StringVar(&asHex, "as", "", "export on behalf of this user id (defaults to --user)")
	exp.Flags().StringVarP(&format, "format", "f", "json", "json, csv or xlsx")
	exp.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout when empty)")
	exp.Flags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	_ = exp.MarkFlagRequired("user")
	_ = exp.MarkFlagRequired("quiz")

	cmd.AddCommand(exp)
	return cmd
}
