package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wevysya/voiceos/internal/core/domain"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactive voice session",
	Long: `Starts an interactive session where each line of input is one voice turn.

Unlike 'ask', the session is not settled automatically: a failed turn leaves
the session in the error state until it is acknowledged or times out.

Commands:
  :state   Show the session state
  :cancel  Cancel and return to idle
  :ack     Acknowledge an error
  :quit    Exit`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, _ []string) error {
	if voiceService == nil {
		return errors.New("voice service not configured")
	}
	caller, err := currentCaller()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	cmd.Printf("Voice session for %s (%s). Type :quit to exit.\n", caller.SessionKey(), caller.Tier)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case ":quit", ":q":
			voiceService.Cancel(caller)
			return nil
		case ":state":
			data, err := json.MarshalIndent(voiceService.State(caller), "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			continue
		case ":cancel":
			voiceService.Cancel(caller)
			cmd.Println("Cancelled.")
			continue
		case ":ack":
			if err := voiceService.Acknowledge(caller); err != nil {
				cmd.Printf("Nothing to acknowledge: %v\n", err)
			} else {
				cmd.Println("Acknowledged.")
			}
			continue
		}

		resp, turnErr := voiceService.Turn(ctx, caller, line, "")
		if resp == nil {
			cmd.Printf("Turn not run: %v\n", turnErr)
			if errors.Is(turnErr, domain.ErrSessionBusy) {
				cmd.Println("Type :ack to clear the error or :cancel to reset.")
			}
			continue
		}
		printResponse(cmd, resp, turnErr)
		if turnErr == nil {
			voiceService.PlaybackComplete(caller) //nolint:errcheck // playback is instantaneous here
		}
	}
}
