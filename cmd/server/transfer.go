package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/examcraft/backend/internal/service"
)

func newImportCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import topics and flashcards from a JSON or YAML export",
		Long: `Reads a document produced by GET /export (or the export command) and
creates its topics and cards for the given user. The format is chosen
by file extension: .yaml and .yml are YAML, anything else is JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			data, err := service.Decode(f, service.FormatFromPath(args[0]))
			if err != nil {
				return err
			}

			res, err := service.NewTransferService(a.db).Import(cmd.Context(), userID, data)
			if err != nil {
				a.logger.Error("import failed", zap.String("file", args[0]), zap.Error(err))
				return err
			}

			a.logger.Info("import finished",
				zap.String("user_id", userID),
				zap.Int("topics_created", res.TopicsCreated),
				zap.Int("flashcards_created", res.FlashcardsCreated),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d topics and %d flashcards\n", res.TopicsCreated, res.FlashcardsCreated)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner of the imported topics")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newExportCmd() *cobra.Command {
	var userID, format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's topics and flashcards as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := service.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			data, err := service.NewTransferService(a.db).Export(cmd.Context(), userID)
			if err != nil {
				a.logger.Error("export failed", zap.String("user_id", userID), zap.Error(err))
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			return service.Encode(w, data, f)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner of the exported topics")
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
