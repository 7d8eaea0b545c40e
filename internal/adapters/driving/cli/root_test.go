package cli

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wevysya/voiceos/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "voiceos", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "user", "tier", "authenticated"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "guest", rootCmd.PersistentFlags().Lookup("tier").DefValue)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	want := []string{
		"version", "ask", "session", "knowledge", "actions", "settings",
		"mcp", "serve", "metrics", "console", "tasks",
	}
	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, registered[name], "command %s not registered", name)
	}
}

func TestCurrentCaller(t *testing.T) {
	defer resetFlags()

	t.Run("defaults to anonymous guest", func(t *testing.T) {
		resetFlags()
		caller, err := currentCaller()
		require.NoError(t, err)
		assert.Equal(t, domain.Anonymous(), caller)
	})

	t.Run("normalises tier", func(t *testing.T) {
		resetFlags()
		callerUserID = "  u-42 "
		callerTier = " Inner_Circle "
		authenticated = true

		caller, err := currentCaller()
		require.NoError(t, err)
		assert.Equal(t, domain.CallerContext{UserID: "u-42", Tier: domain.TierInnerCircle, Authenticated: true}, caller)
	})

	t.Run("empty tier is guest", func(t *testing.T) {
		resetFlags()
		callerTier = ""
		caller, err := currentCaller()
		require.NoError(t, err)
		assert.Equal(t, domain.TierGuest, caller.Tier)
	})

	t.Run("rejects unknown tier", func(t *testing.T) {
		resetFlags()
		callerTier = "platinum"
		_, err := currentCaller()
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestCommandContext(t *testing.T) {
	cmd := &cobra.Command{}
	assert.Equal(t, context.Background(), commandContext(cmd))

	type key string
	ctx := context.WithValue(context.Background(), key("k"), "v")
	cmd.SetContext(ctx)
	assert.Equal(t, ctx, commandContext(cmd))
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)

	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

func TestVersionCmd_Executes(t *testing.T) {
	original := version
	version = "test-version-1.0.0"
	defer func() { version = original }()

	out, err := executeCommand(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "voiceos version test-version-1.0.0")
}

func TestCommands_WithoutServices(t *testing.T) {
	SetServices(Services{})

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"ask", "hello"}, "voice service not configured"},
		{[]string{"session"}, "voice service not configured"},
		{[]string{"knowledge", "list"}, "knowledge service not configured"},
		{[]string{"actions", "list"}, "action dispatcher not configured"},
		{[]string{"tasks"}, "task store not configured"},
		{[]string{"serve"}, "scheduler not configured"},
		{[]string{"metrics", "serve"}, "metrics not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
