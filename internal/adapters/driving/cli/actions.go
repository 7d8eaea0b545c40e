package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wevysya/voiceos/internal/core/domain"
)

var actionsJSON bool

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List and run voice actions",
	Long:  `Lists the registered voice actions, or runs one directly as the current caller.`,
	RunE:  runActionsList,
}

var actionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered actions",
	Args:  cobra.NoArgs,
	RunE:  runActionsList,
}

var actionsRunCmd = &cobra.Command{
	Use:   "run [action] [param=value...]",
	Short: "Dispatch an action",
	Long: `Dispatches an action without classification. Parameter values are
converted to the types the action declares.

Example:
  voiceos --tier member --user u-42 --authenticated actions run navigate screen=/events`,
	Args: cobra.MinimumNArgs(1),
	RunE: runActionsRun,
}

func init() {
	actionsCmd.PersistentFlags().BoolVar(&actionsJSON, "json", false, "output as JSON")
	actionsCmd.AddCommand(actionsListCmd)
	actionsCmd.AddCommand(actionsRunCmd)
	rootCmd.AddCommand(actionsCmd)
}

func runActionsList(cmd *cobra.Command, _ []string) error {
	if actionDispatcher == nil {
		return errors.New("action dispatcher not configured")
	}

	infos := actionDispatcher.Actions()
	if actionsJSON {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal actions: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(infos) == 0 {
		cmd.Println("No actions registered.")
		return nil
	}

	cmd.Println("Available actions:")
	cmd.Println()
	for i := range infos {
		info := &infos[i]
		access := string(info.RequiredTier)
		if info.RequiresAuth {
			access += ", authenticated"
		}
		cmd.Printf("  %s - %s\n", info.Name, info.Description)
		cmd.Printf("    Requires: %s\n", access)
		for _, p := range info.Parameters {
			required := ""
			if p.Required {
				required = " (required)"
			}
			cmd.Printf("    %s=<%s>%s: %s\n", p.Name, p.Type, required, p.Description)
		}
		cmd.Println()
	}
	return nil
}

func runActionsRun(cmd *cobra.Command, args []string) error {
	if actionDispatcher == nil {
		return errors.New("action dispatcher not configured")
	}
	caller, err := currentCaller()
	if err != nil {
		return err
	}

	action := domain.VoiceAction{Name: args[0]}
	info, _ := findAction(args[0])
	action.Parameters, err = parseParams(info.Parameters, args[1:])
	if err != nil {
		return err
	}

	result, err := actionDispatcher.Dispatch(commandContext(cmd), action, caller)
	if err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}

	if actionsJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !result.Success {
		cmd.Printf("Action %s failed: %s\n", action.Name, result.Error)
		return nil
	}
	cmd.Printf("Action %s succeeded.\n", action.Name)
	if result.Navigation {
		cmd.Printf("  -> %s\n", result.Screen)
	}
	keys := make([]string, 0, len(result.Data))
	for k := range result.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("  %s: %v\n", k, result.Data[k])
	}
	return nil
}

func findAction(name string) (domain.ActionInfo, bool) {
	for _, info := range actionDispatcher.Actions() {
		if info.Name == name {
			return info, true
		}
	}
	return domain.ActionInfo{}, false
}

// parseParams turns key=value arguments into typed parameters.
// Keys missing from schema are passed through as strings for the
// dispatcher to reject.
func parseParams(schema domain.ParameterSchema, args []string) (map[string]any, error) {
	params := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q must be key=value", domain.ErrInvalidInput, arg)
		}

		spec, known := schema.Lookup(key)
		if !known {
			params[key] = raw
			continue
		}

		value, err := parseValue(spec.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: parameter %s: %v", domain.ErrInvalidInput, key, err)
		}
		params[key] = value
	}
	return params, nil
}

func parseValue(t domain.ParamType, raw string) (any, error) {
	switch t {
	case domain.ParamNumber:
		return strconv.ParseFloat(raw, 64)
	case domain.ParamInteger:
		return strconv.ParseInt(raw, 10, 64)
	case domain.ParamBoolean:
		return strconv.ParseBool(raw)
	default:
		return raw, nil
	}
}
