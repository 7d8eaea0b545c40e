// Package cli provides the voiceos command line interface.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/ports/driving"
	"github.com/wevysya/voiceos/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services wired in by main.
var (
	voiceService     driving.VoiceService
	knowledgeService driving.KnowledgeService
	importer         driving.KnowledgeImporter
	actionDispatcher driving.ActionDispatcher
	settingsService  driving.SettingsService
	configStore      driven.ConfigStore
	schedulerStore   driven.SchedulerStore
	scheduler        driving.Scheduler
	schedulerConfig  domain.SchedulerConfig
	metricsHandler   http.Handler
)

// Persistent flags.
var (
	verbose       bool
	callerUserID  string
	callerTier    string
	authenticated bool
)

// Services holds the core services the commands drive.
type Services struct {
	Voice           driving.VoiceService
	Knowledge       driving.KnowledgeService
	Importer        driving.KnowledgeImporter
	Actions         driving.ActionDispatcher
	Settings        driving.SettingsService
	Config          driven.ConfigStore
	Tasks           driven.SchedulerStore
	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig
	Metrics         http.Handler
}

var rootCmd = &cobra.Command{
	Use:   "voiceos",
	Short: "Voice assistant pipeline for the WeVysya app",
	Long: `voiceos turns spoken requests into knowledge answers and app actions.

Each turn is classified into a knowledge question or an action, answered from
the knowledge store or dispatched through the action registry, and rendered as
a single spoken response.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&callerUserID, "user", "", "member ID to act as (empty for anonymous)")
	rootCmd.PersistentFlags().StringVar(&callerTier, "tier", string(domain.TierGuest),
		"permission tier: guest, member, inner_circle or admin")
	rootCmd.PersistentFlags().BoolVar(&authenticated, "authenticated", false, "treat the member as authenticated")
}

// SetServices wires the core services into the commands.
func SetServices(s Services) {
	voiceService = s.Voice
	knowledgeService = s.Knowledge
	importer = s.Importer
	actionDispatcher = s.Actions
	settingsService = s.Settings
	configStore = s.Config
	schedulerStore = s.Tasks
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
	metricsHandler = s.Metrics
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// currentCaller builds the CallerContext from the persistent flags.
func currentCaller() (domain.CallerContext, error) {
	tier := domain.PermissionTier(strings.ToLower(strings.TrimSpace(callerTier)))
	if tier == "" {
		tier = domain.TierGuest
	}
	if !tier.IsValid() {
		return domain.CallerContext{}, fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidInput, callerTier)
	}
	return domain.CallerContext{
		UserID:        strings.TrimSpace(callerUserID),
		Authenticated: authenticated,
		Tier:          tier,
	}, nil
}

// commandContext returns the command's context, or Background when run
// outside Execute (as in tests that call RunE directly).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
