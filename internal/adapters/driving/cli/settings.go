package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wevysya/voiceos/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure pipeline policy, AI providers, and other options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the classifier, embeddings and confidence threshold.`,
	RunE:  runSettingsWizard,
}

var settingsClassifierCmd = &cobra.Command{
	Use:   "classifier",
	Short: "Configure classification provider",
	Long:  `Configure the provider that classifies transcripts into intents.`,
	RunE:  runSettingsClassifier,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider for similarity search over knowledge documents.`,
	RunE:  runSettingsEmbedding,
}

var settingsThresholdCmd = &cobra.Command{
	Use:   "threshold [value]",
	Short: "Set the action confidence threshold",
	Long: `Set the minimum classifier confidence (0 to 1) for executing an action.
Less confident action intents are answered with a clarification instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsThreshold,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a raw configuration key",
	Long: `Set a configuration key such as pipeline.retries or cache.redis_addr.

When the key is an API key and no value is given, the value is read
without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check settings and ping configured providers",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsClassifierCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsThresholdCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	p := settings.Pipeline
	cmd.Println("[Pipeline]")
	cmd.Printf("  Confidence threshold: %.2f\n", p.ConfidenceThreshold)
	cmd.Printf("  Classification timeout: %s\n", p.ClassificationTimeout)
	cmd.Printf("  Search timeout: %s\n", p.SearchTimeout)
	cmd.Printf("  Dispatch timeout: %s\n", p.DispatchTimeout)
	cmd.Printf("  Retries: %d\n", p.Retries)
	cmd.Printf("  Duplicate window: %s\n", p.DuplicateWindow)
	cmd.Printf("  Error reset after: %s\n", p.ErrorResetAfter)
	cmd.Printf("  Search limit: %d\n", p.SearchLimit)
	cmd.Println()

	c := settings.Classifier
	printProvider(cmd, "Classifier", c.Provider, c.Model, c.BaseURL, c.APIKey, c.IsConfigured())

	e := settings.Embedding
	printProvider(cmd, "Embedding", e.Provider, e.Model, e.BaseURL, e.APIKey, e.IsConfigured())

	cmd.Println("[Cache]")
	if settings.Cache.IsConfigured() {
		cmd.Printf("  Redis: %s\n", settings.Cache.RedisAddr)
		cmd.Printf("  TTL: %s\n", settings.Cache.TTL)
	} else {
		cmd.Println("  Disabled")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'voiceos settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, section string, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("[%s]\n", section)
	if provider == "" {
		cmd.Println("  Provider: (not set)")
		cmd.Println()
		return
	}
	cmd.Printf("  Provider: %s\n", provider.Description())
	if model != "" {
		cmd.Printf("  Model: %s\n", model)
	}
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if apiKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	cmd.Println("voiceos Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Configure Classification Provider")
	cmd.Println("-----------------------------------------")
	if err := configureClassifierProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Print("Enable similarity search? [y/N]: ")
	if strings.EqualFold(readLine(reader), "y") {
		if err := configureEmbeddingProvider(cmd, reader); err != nil {
			return err
		}
	} else {
		cmd.Println("Skipped; knowledge search will use keywords only.")
		cmd.Println()
	}

	cmd.Println("Step 3: Confidence Threshold")
	cmd.Println("----------------------------")
	cmd.Printf("Enter threshold [%.2f]: ", domain.DefaultConfidenceThreshold)
	if input := readLine(reader); input != "" {
		if err := setThreshold(input); err != nil {
			return err
		}
	}
	cmd.Println()

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsClassifier(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	return configureClassifierProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsThreshold(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	if err := setThreshold(args[0]); err != nil {
		return err
	}
	cmd.Printf("Confidence threshold set to: %s\n", args[0])
	return nil
}

func setThreshold(input string) error {
	threshold, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return fmt.Errorf("%w: threshold %q is not a number", domain.ErrInvalidInput, input)
	}
	if err := settingsService.SetConfidenceThreshold(threshold); err != nil {
		return fmt.Errorf("failed to set threshold: %w", err)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case strings.HasSuffix(key, "api_key"):
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword(cmd)
		cmd.Println()
	default:
		return fmt.Errorf("a value is required for %s", key)
	}

	if err := configStore.Set(key, configValue(key, value)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, "api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

// stringKeySuffixes name settings that are always stored as strings.
var stringKeySuffixes = []string{"provider", "model", "base_url", "api_key", "redis_addr"}

// configValue stores numbers and booleans with their TOML types.
func configValue(key, raw string) any {
	for _, suffix := range stringKeySuffixes {
		if strings.HasSuffix(key, suffix) {
			return raw
		}
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	cmd.Println("Settings: OK")

	cmd.Print("Classifier... ")
	if err := settingsService.ValidateClassifierConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("classifier validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Print("Embedding... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding validation failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}

// providerPrompt collects the provider, model, base URL and API key.
type providerPrompt struct {
	provider domain.AIProvider
	model    string
	baseURL  string
	apiKey   string
}

func promptProvider(cmd *cobra.Command, reader *bufio.Reader, defaults map[domain.AIProvider]string) (providerPrompt, error) {
	providers := domain.AllProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)

	var out providerPrompt
	out.provider = providers[idx-1]

	if defaultModel := defaults[out.provider]; defaultModel != "" {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		out.model = readLine(reader)
		if out.model == "" {
			out.model = defaultModel
		}
	}

	if out.provider.RequiresBaseURL() {
		defaultURL := os.Getenv("VOICEOS_EDGE_URL")
		cmd.Printf("Enter base URL [%s]: ", defaultURL)
		out.baseURL = readLine(reader)
		if out.baseURL == "" {
			out.baseURL = defaultURL
		}
		if out.baseURL == "" {
			return out, errors.New("base URL is required for this provider")
		}
	}

	cmd.Print("Enter API key: ")
	out.apiKey = readPasswordFrom(reader)
	cmd.Println()
	if out.apiKey == "" {
		return out, errors.New("API key is required for this provider")
	}
	return out, nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for classification - intentional for CLI flow clarity
func configureClassifierProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Classification Provider")
	p, err := promptProvider(cmd, reader, domain.DefaultClassifierModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetClassifierProvider(p.provider, p.model, p.baseURL, p.apiKey); err != nil {
		return fmt.Errorf("failed to configure classifier: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateClassifierConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("classifier configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Classifier configured: %s\n\n", p.provider.Description())
	return nil
}

//nolint:dupl // Similar to configureClassifierProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	p, err := promptProvider(cmd, reader, domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(p.provider, p.model, p.baseURL, p.apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", p.provider.Description(), p.model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command) string {
	return readPasswordFrom(bufio.NewReader(cmd.InOrStdin()))
}

func readPasswordFrom(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
