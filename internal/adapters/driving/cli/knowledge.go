package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wevysya/voiceos/internal/actions"
	"github.com/wevysya/voiceos/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchSimilar bool

	listCategory string

	ingestID       string
	ingestTitle    string
	ingestCategory string
	ingestSource   string
	ingestFile     string
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the knowledge store",
	Long:  `Seed, ingest, search and inspect the documents knowledge answers are drawn from.`,
}

var knowledgeSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter WeVysya documents",
	Long: `Ingests the built-in WeVysya documents. Seed documents have stable IDs,
so seeding again updates them in place.`,
	Args: cobra.NoArgs,
	RunE: runKnowledgeSeed,
}

var knowledgeIngestCmd = &cobra.Command{
	Use:   "ingest [content]",
	Short: "Add a document",
	Long: `Adds a document to the knowledge store. Content is taken from the
arguments or from --file. The document is embedded when an embedding
provider is configured.`,
	RunE: runKnowledgeIngest,
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search knowledge documents",
	Long: `Performs case-insensitive keyword search across document titles and content.
With --similar, ranks documents by embedding similarity instead, falling back
to keywords when no embedding provider is available.`,
	Args: cobra.ExactArgs(1),
	RunE: runKnowledgeSearch,
}

var knowledgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runKnowledgeList,
}

var knowledgeGetCmd = &cobra.Command{
	Use:   "get [document-id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeGet,
}

var knowledgeDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeDelete,
}

var knowledgeBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed documents that have no embedding",
	Args:  cobra.NoArgs,
	RunE:  runKnowledgeBackfill,
}

func init() {
	knowledgeSearchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	knowledgeSearchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	knowledgeSearchCmd.Flags().BoolVar(&searchSimilar, "similar", false, "rank by embedding similarity")

	knowledgeListCmd.Flags().StringVar(&listCategory, "category", "", "only list documents in this category")

	knowledgeIngestCmd.Flags().StringVar(&ingestID, "id", "", "document ID (generated when empty)")
	knowledgeIngestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title")
	knowledgeIngestCmd.Flags().StringVar(&ingestCategory, "category", "general", "document category")
	knowledgeIngestCmd.Flags().StringVar(&ingestSource, "source", "cli", "document source")
	knowledgeIngestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "read content from file")
	knowledgeIngestCmd.MarkFlagRequired("title") //nolint:errcheck // flag is defined above

	knowledgeCmd.AddCommand(knowledgeSeedCmd)
	knowledgeCmd.AddCommand(knowledgeIngestCmd)
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeListCmd)
	knowledgeCmd.AddCommand(knowledgeGetCmd)
	knowledgeCmd.AddCommand(knowledgeDeleteCmd)
	knowledgeCmd.AddCommand(knowledgeBackfillCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func requireKnowledge() error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}
	return nil
}

func runKnowledgeSeed(cmd *cobra.Command, _ []string) error {
	if err := requireKnowledge(); err != nil {
		return err
	}

	docs := actions.SeedDocuments()
	if err := knowledgeService.IngestBatch(commandContext(cmd), docs); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	cmd.Printf("Seeded %d documents.\n", len(docs))
	return nil
}

func runKnowledgeIngest(cmd *cobra.Command, args []string) error {
	if err := requireKnowledge(); err != nil {
		return err
	}

	content := strings.Join(args, " ")
	if ingestFile != "" {
		data, err := os.ReadFile(ingestFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", ingestFile, err)
		}
		content = string(data)
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("content is required: pass it as arguments or with --file")
	}

	doc := &domain.KnowledgeDocument{
		ID:      ingestID,
		Content: content,
		Metadata: domain.DocumentMetadata{
			Title:    ingestTitle,
			Category: ingestCategory,
			Source:   ingestSource,
		},
	}
	if err := knowledgeService.Ingest(commandContext(cmd), doc); err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested document: %s\n", doc.ID)
	if len(doc.Embedding) == 0 {
		cmd.Println("  (no embedding; keyword search only until backfilled)")
	}
	return nil
}

func runKnowledgeSearch(cmd *cobra.Command, args []string) error {
	if err := requireKnowledge(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	var (
		results []domain.SearchResult
		err     error
	)
	if searchSimilar {
		results, err = knowledgeService.Search(ctx, args[0], searchLimit)
	} else {
		results, err = knowledgeService.SearchKeyword(ctx, args[0], searchLimit)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		title := r.Metadata.Title
		if title == "" {
			title = r.ID
		}
		if r.Mode == domain.SearchModeSimilarity {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, r.Similarity)
		} else {
			cmd.Printf("  [%d] %s\n", i+1, title)
		}
		cmd.Printf("      Category: %s\n", r.Metadata.Category)
		cmd.Printf("      %s\n", snippet(r.Content, 120))
		cmd.Println()
	}
	return nil
}

func runKnowledgeList(cmd *cobra.Command, _ []string) error {
	if err := requireKnowledge(); err != nil {
		return err
	}

	docs, err := knowledgeService.List(commandContext(cmd), listCategory)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents.")
		return nil
	}

	cmd.Printf("Documents (%d):\n", len(docs))
	for i := range docs {
		embedded := ""
		if len(docs[i].Embedding) > 0 {
			embedded = " [embedded]"
		}
		cmd.Printf("  %s  %s (%s)%s\n", docs[i].ID, docs[i].Metadata.Title, docs[i].Metadata.Category, embedded)
	}
	return nil
}

func runKnowledgeGet(cmd *cobra.Command, args []string) error {
	if err := requireKnowledge(); err != nil {
		return err
	}

	doc, err := knowledgeService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}

	cmd.Printf("ID:       %s\n", doc.ID)
	cmd.Printf("Title:    %s\n", doc.Metadata.Title)
	cmd.Printf("Category: %s\n", doc.Metadata.Category)
	cmd.Printf("Source:   %s\n", doc.Metadata.Source)
	if !doc.CreatedAt.IsZero() {
		cmd.Printf("Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04"))
	}
	cmd.Println()
	cmd.Println(doc.Content)
	return nil
}

func runKnowledgeDelete(cmd *cobra.Command, args []string) error {
	if err := requireKnowledge(); err != nil {
		return err
	}

	if err := knowledgeService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	cmd.Printf("Deleted document: %s\n", args[0])
	return nil
}

func runKnowledgeBackfill(cmd *cobra.Command, _ []string) error {
	if err := requireKnowledge(); err != nil {
		return err
	}

	n, err := knowledgeService.BackfillEmbeddings(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	cmd.Printf("Embedded %d documents.\n", n)
	return nil
}

// snippet shortens s to at most n runes on a single line.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
