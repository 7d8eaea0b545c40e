package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wevysya/voiceos/internal/connectors/filesystem"
	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
	"github.com/wevysya/voiceos/internal/normalisers"
)

var (
	importCategory string
	importSource   string
	importWatch    bool
)

var knowledgeImportCmd = &cobra.Command{
	Use:   "import [directory]",
	Short: "Import a directory of documents",
	Long: `Imports every markdown, HTML and text file under a directory. Each file
becomes one document with the ID "file:<relative path>"; long files are split
into parts. Importing again replaces the documents of files that changed.

With --watch, keeps running and re-imports files as they are written.`,
	Args: cobra.ExactArgs(1),
	RunE: runKnowledgeImport,
}

func init() {
	knowledgeImportCmd.Flags().StringVar(&importCategory, "category", "general", "category for imported documents")
	knowledgeImportCmd.Flags().StringVar(&importSource, "source", "import", "source recorded on imported documents")
	knowledgeImportCmd.Flags().BoolVarP(&importWatch, "watch", "w", false, "re-import files as they change")

	knowledgeCmd.AddCommand(knowledgeImportCmd)
}

func runKnowledgeImport(cmd *cobra.Command, args []string) error {
	if importer == nil {
		return errors.New("importer not configured")
	}

	src := filesystem.New(args[0], normalisers.Defaults().Supports)
	if err := src.Validate(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	opts := driving.ImportOptions{Category: importCategory, Source: importSource}

	report, err := importer.Import(ctx, src, opts)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	printImportReport(cmd, report)

	if !importWatch {
		return nil
	}

	cmd.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", src.Root())
	return importer.Watch(ctx, src, opts, func(f domain.SourceFile, n int, err error) {
		if err != nil {
			cmd.Printf("  ! %s: %v\n", f.RelPath, err)
			return
		}
		cmd.Printf("  %s -> %d documents\n", f.RelPath, n)
	})
}

func printImportReport(cmd *cobra.Command, report domain.ImportReport) {
	cmd.Printf("Imported %d files as %d documents.\n", report.Files-len(report.Skipped), report.Documents)
	if report.Removed > 0 {
		cmd.Printf("Removed %d outdated documents.\n", report.Removed)
	}
	if len(report.Skipped) == 0 {
		return
	}

	paths := make([]string, 0, len(report.Skipped))
	for p := range report.Skipped {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	cmd.Printf("Skipped %d files:\n", len(paths))
	for _, p := range paths {
		cmd.Printf("  %s: %s\n", p, report.Skipped[p])
	}
}
