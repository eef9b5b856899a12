package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/quizmart/internal/app/services/quiz"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"
)

// ReadQuizFile decodes a quiz document:
//
//	title: Onboarding
//	description: First week basics
//	questions:
//	  - title: Where is the office?
//	    answer_options:
//	      - text: Floor 2
//	        is_correct: true
func ReadQuizFile(r io.Reader) (quiz.CreateInput, error) {
	var in quiz.CreateInput
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return quiz.CreateInput{}, fmt.Errorf("decode quiz yaml: %w", err)
	}
	if in.Title == "" {
		return quiz.CreateInput{}, fmt.Errorf("quiz yaml: title is required")
	}
	return in, nil
}

func quizCmd(settings func(*cobra.Command) (Settings, error)) *cobra.Command {
	var (
		companyHex string
		ownerHex   string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Quiz authoring tasks",
	}
	imp := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create a quiz from a YAML document",
		Long: `Create a quiz, its questions and answer options from a YAML file.

The owner must be able to manage the company, exactly as when the quiz is
created through the API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := primitive.ObjectIDFromHex(companyHex)
			if err != nil {
				return fmt.Errorf("--company: %w", err)
			}
			ownerID, err := primitive.ObjectIDFromHex(ownerHex)
			if err != nil {
				return fmt.Errorf("--owner: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in, err := ReadQuizFile(f)
			if err != nil {
				return err
			}
			in.CompanyID = companyID

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

			full, err := quiz.New(db, nil, newLogger(verbose)).CreateQuiz(ctx, in, ownerID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created quiz %s (%q) with %d questions\n",
				full.ID.Hex(), full.Title, len(full.Questions))
			return nil
		},
	}
	imp.Flags().StringVar(&companyHex, "company", "", "company id (required)")
	imp.Flags().StringVar(&ownerHex, "owner", "", "id of the user creating the quiz (required)")
	imp.Flags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	_ = imp.MarkFlagRequired("company")
	_ = imp.MarkFlagRequired("owner")

	cmd.AddCommand(imp)
	return cmd
}
