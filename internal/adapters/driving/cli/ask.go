package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wevysya/voiceos/internal/core/domain"
)

var (
	askContext string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [transcript]",
	Short: "Run one voice turn",
	Long: `Runs a single voice turn for the given transcript and prints the response.

The transcript is classified as a knowledge question or an action. Questions
are answered from the knowledge store; actions are dispatched as the caller
given by --user, --tier and --authenticated.

Examples:
  voiceos ask "what is a chapter meeting"
  voiceos ask --tier member --user u-42 --authenticated "open events"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askContext, "context", "c", "", "conversation context passed to the classifier")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if voiceService == nil {
		return errors.New("voice service not configured")
	}
	caller, err := currentCaller()
	if err != nil {
		return err
	}

	transcript := strings.Join(args, " ")
	resp, turnErr := voiceService.Turn(commandContext(cmd), caller, transcript, askContext)
	if resp == nil {
		return fmt.Errorf("voice turn failed: %w", turnErr)
	}
	settle(caller, turnErr)

	if askJSON {
		return outputResponseJSON(cmd, resp)
	}
	printResponse(cmd, resp, turnErr)
	return nil
}

// settle returns the caller's session to idle once the response has been shown.
func settle(caller domain.CallerContext, turnErr error) {
	if turnErr != nil {
		voiceService.Acknowledge(caller) //nolint:errcheck // a stale error resets on the next turn
		return
	}
	voiceService.PlaybackComplete(caller) //nolint:errcheck // nothing is speaking
}

func outputResponseJSON(cmd *cobra.Command, resp *domain.Response) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printResponse(cmd *cobra.Command, resp *domain.Response, turnErr error) {
	cmd.Println(resp.Text)
	if resp.Navigation {
		cmd.Printf("  -> %s\n", resp.Screen)
	}
	for i := range resp.Results {
		title := resp.Results[i].Metadata.Title
		if title == "" {
			title = resp.Results[i].ID
		}
		cmd.Printf("  [%d] %s\n", i+1, title)
	}
	if turnErr != nil && verbose {
		cmd.Printf("  (%s: %v)\n", domain.ErrorKind(turnErr), turnErr)
	}
}
