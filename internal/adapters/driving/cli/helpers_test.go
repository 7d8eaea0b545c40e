package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wevysya/voiceos/internal/actions"
	"github.com/wevysya/voiceos/internal/adapters/driven/storage/memory"
	"github.com/wevysya/voiceos/internal/core/domain"
	"github.com/wevysya/voiceos/internal/core/ports/driven"
	"github.com/wevysya/voiceos/internal/core/services"
	"github.com/wevysya/voiceos/internal/normalisers"
	"github.com/wevysya/voiceos/internal/postprocessors/chunker"
)

const (
	knowledgeReply = `{"type":"knowledge","category":"membership","response":"","confidence":0.9}`
	navigateReply  = `{"type":"action","action":{"name":"navigate","parameters":{"screen":"/events"}},` +
		`"response":"Opening events.","confidence":0.95}`
)

// stubClassifier returns a canned reply for every transcript.
type stubClassifier struct {
	reply string
	err   error
}

func (s *stubClassifier) Classify(context.Context, driven.ClassificationRequest) (string, error) {
	return s.reply, s.err
}
func (s *stubClassifier) Name() string               { return "stub" }
func (s *stubClassifier) Ping(context.Context) error { return nil }
func (s *stubClassifier) Close() error               { return nil }

// testServices exposes the wired services to assertions.
type testServices struct {
	voice     *services.VoiceService
	knowledge *services.KnowledgeService
	registry  *services.ActionRegistry
	records   driven.RecordStore
	config    driven.ConfigStore
	settings  *services.SettingsService
}

// setupTestServices wires real services over in-memory stores with a
// classifier that always answers reply.
func setupTestServices(t *testing.T, reply string) *testServices {
	t.Helper()

	knowledge := services.NewKnowledgeService(memory.NewKnowledgeStore(), nil)
	records := memory.NewRecordStore()
	registry := services.NewActionRegistry()
	require.NoError(t, actions.RegisterDefaults(registry, records))
	registry.Seal()

	intents := services.NewIntentService(&stubClassifier{reply: reply}, registry, knowledge)
	voice := services.NewVoiceService(intents, knowledge, registry, services.NewSynthesizer())
	config := memory.NewConfigStore()
	settings := services.NewSettingsService(config, nil)

	SetServices(Services{
		Voice:           voice,
		Knowledge:       knowledge,
		Importer:        services.NewImporter(knowledge, normalisers.Defaults(), chunker.New()),
		Actions:         registry,
		Settings:        settings,
		Config:          config,
		SchedulerConfig: domain.DefaultSchedulerConfig(),
	})
	t.Cleanup(func() { SetServices(Services{}) })

	return &testServices{
		voice:     voice,
		knowledge: knowledge,
		registry:  registry,
		records:   records,
		config:    config,
		settings:  settings,
	}
}

// resetFlags restores flag variables that persist between executions.
func resetFlags() {
	verbose = false
	callerUserID = ""
	callerTier = string(domain.TierGuest)
	authenticated = false
	askContext = ""
	askJSON = false
	searchLimit = domain.DefaultSearchLimit
	searchJSON = false
	searchSimilar = false
	listCategory = ""
	ingestID = ""
	ingestTitle = ""
	ingestCategory = "general"
	ingestSource = "cli"
	ingestFile = ""
	importCategory = "general"
	importSource = "import"
	importWatch = false
	actionsJSON = false
	taskHistoryLimit = 10
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandWithInput(t, "", args...)
}

func executeCommandWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
