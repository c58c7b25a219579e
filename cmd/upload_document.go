/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/manualbot/service"
	"github.com/tieubaoca/manualbot/types"
	"github.com/tieubaoca/manualbot/utils"
)

// uploadDocumentCmd represents the uploadDocument command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document --title <title> <file|dir>...",
	Short: "Ingest local files under a manual title",
	Long: `Extracts, chunks and embeds local PDFs and images and stores them
under the given manual title. Directories are scanned one level deep for
supported files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			return errors.New("--title is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		paths, err := utils.CollectFiles(args, service.IsSupportedFile)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return errors.New("no supported files found")
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		files := make([]types.SourceFile, 0, len(paths))
		for _, p := range paths {
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			defer f.Close()
			files = append(files, types.SourceFile{Name: filepath.Base(p), Content: f})
			log.Debug().Str("file", p).Msg("Queued document")
		}

		numChunks, err := a.ingest.Ingest(ctx, title, files)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Documents uploaded under title '%s'. %d chunks from %d files.\n", title, numChunks, len(files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)
	uploadDocumentCmd.Flags().StringP("title", "t", "", "Manual title the documents are stored under")
}
