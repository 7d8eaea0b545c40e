package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var taskHistoryLimit int

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show scheduled maintenance tasks",
	Long:  `Lists the maintenance tasks with their schedule and last outcome.`,
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksHistoryCmd = &cobra.Command{
	Use:   "history [task-id]",
	Short: "Show recent runs of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksHistory,
}

func init() {
	tasksHistoryCmd.Flags().IntVarP(&taskHistoryLimit, "limit", "n", 10, "number of runs to show")

	tasksCmd.AddCommand(tasksHistoryCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	if schedulerStore == nil {
		return errors.New("task store not configured")
	}

	tasks, err := schedulerStore.ListTasks(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}
	if len(tasks) == 0 {
		cmd.Println("No tasks have run yet.")
		return nil
	}

	if !schedulerConfig.Enabled {
		cmd.Println("Scheduler is disabled.")
		cmd.Println()
	}

	for i := range tasks {
		t := &tasks[i]
		state := "enabled"
		if !t.Enabled {
			state = "disabled"
		}
		cmd.Printf("%s (%s)\n", t.Name, t.ID)
		cmd.Printf("  Interval:     %s, %s\n", t.Interval, state)
		cmd.Printf("  Last run:     %s\n", formatTime(t.LastRun))
		cmd.Printf("  Next run:     %s\n", formatTime(t.NextRun))
		cmd.Printf("  Last success: %s\n", formatTime(t.LastSuccess))
		if t.LastError != "" {
			cmd.Printf("  Last error:   %s\n", t.LastError)
		}
		cmd.Println()
	}
	return nil
}

func runTasksHistory(cmd *cobra.Command, args []string) error {
	if schedulerStore == nil {
		return errors.New("task store not configured")
	}

	history, err := schedulerStore.GetTaskHistory(commandContext(cmd), args[0], taskHistoryLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if len(history) == 0 {
		cmd.Printf("No runs recorded for %s.\n", args[0])
		return nil
	}

	for _, r := range history {
		outcome := "ok"
		if !r.Success {
			outcome = "failed: " + r.Error
		}
		cmd.Printf("%s  %8s  %3d items  %s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.ItemsProcessed, outcome)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}
