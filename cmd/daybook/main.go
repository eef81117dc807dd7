package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"daybook/internal/config"
	"daybook/internal/db"
	"daybook/internal/repository"
	"daybook/internal/session"
	"daybook/internal/timeutil"
	"daybook/internal/tracker"
	"daybook/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "Single-user workday and task time tracker",
	Long: `Daybook records when your workday begins and ends, times named tasks
during the day, and reports how the day was spent. A task left running when
the process stops is picked up again on the next start.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, tr := mustOpen()
		defer db.Close()

		if err := tui.Run(tr, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the business start time and the running task",
	Run: func(cmd *cobra.Command, args []string) {
		_, tr := mustOpen()
		defer db.Close()

		state := tr.State()
		fmt.Printf("Business start: %s\n", state.BusinessStart.Format("15:04:05"))
		if state.Active == nil {
			fmt.Println("No task is being timed.")
			return
		}
		fmt.Printf("Timing '%s' since %s (%s elapsed)\n",
			state.Active.TaskName,
			state.Active.StartedAt.Format("15:04:05"),
			timeutil.FormatDuration(tr.Now().Sub(state.Active.StartedAt)),
		)
	},
}

var startCmd = &cobra.Command{
	Use:   "start <task-name>",
	Short: "Start timing a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, tr := mustOpen()
		defer db.Close()

		task, err := tr.Tasks.GetByName(args[0])
		if err != nil {
			fatal(err)
		}
		if task == nil {
			create, _ := cmd.Flags().GetBool("create")
			if !create {
				fatal(fmt.Errorf("no task named %q (use --create to add it)", args[0]))
			}
			task, err = tr.AddTask(args[0])
			if err != nil {
				fatal(err)
			}
		}

		ts := timestampFlag(cmd, tr)
		if err := tr.StartTask(task.ID, ts); err != nil {
			if errors.Is(err, tracker.ErrTaskActive) {
				fatal(fmt.Errorf("another task is running, stop it first"))
			}
			fatal(err)
		}
		fmt.Printf("Started '%s' at %s\n", task.Name, ts.Format("15:04:05"))
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running task",
	Run: func(cmd *cobra.Command, args []string) {
		_, tr := mustOpen()
		defer db.Close()

		state := tr.State()
		if state.Active == nil {
			fatal(fmt.Errorf("no task is being timed"))
		}
		name := state.Active.TaskName

		ts := timestampFlag(cmd, tr)
		if err := tr.EndTask(ts); err != nil {
			fatal(err)
		}
		fmt.Printf("Ended '%s' at %s\n", name, ts.Format("15:04:05"))
	},
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, tr := mustOpen()
		defer db.Close()

		task, err := tr.AddTask(args[0])
		if errors.Is(err, repository.ErrDuplicateName) {
			fatal(fmt.Errorf("task %q already exists", args[0]))
		}
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Added task #%d: %s\n", task.ID, task.Name)
	},
}

var taskRenameCmd = &cobra.Command{
	Use:   "rename <old-name> <new-name>",
	Short: "Rename a task",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		_, tr := mustOpen()
		defer db.Close()

		task, err := tr.Tasks.GetByName(args[0])
		if err != nil {
			fatal(err)
		}
		if task == nil {
			fatal(fmt.Errorf("no task named %q", args[0]))
		}
		if err := tr.RenameTask(task.ID, args[1]); err != nil {
			if errors.Is(err, repository.ErrDuplicateName) {
				fatal(fmt.Errorf("task %q already exists", args[1]))
			}
			fatal(err)
		}
		fmt.Printf("Renamed '%s' to '%s'\n", args[0], args[1])
	},
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a task and all its logged time",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, tr := mustOpen()
		defer db.Close()

		task, err := tr.Tasks.GetByName(args[0])
		if err != nil {
			fatal(err)
		}
		if task == nil {
			fatal(fmt.Errorf("no task named %q", args[0]))
		}
		if err := tr.DeleteTask(task.ID); err != nil {
			fatal(err)
		}
		fmt.Printf("Deleted task '%s'\n", task.Name)
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Run: func(cmd *cobra.Command, args []string) {
		_, tr := mustOpen()
		defer db.Close()

		tasks, err := tr.Tasks.GetAll()
		if err != nil {
			fatal(err)
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"ID", "Name"})
		for _, t := range tasks {
			tw.AppendRow(table.Row{t.ID, t.Name})
		}
		tw.Render()
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show today's summary so far",
	Long:  `Sums today's completed task intervals against the business window. If the day has not been ended, the current time stands in for the business end.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, tr := mustOpen()
		defer db.Close()

		state := tr.State()
		end := state.BusinessEnd
		if end.IsZero() {
			end = tr.Now()
		}

		summary, err := tr.Summarize(state.WorkDayID, state.BusinessStart, end)
		if err != nil {
			fatal(err)
		}
		printSummary(summary)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List every completed time log with per-day totals",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, tr := mustOpen()
		defer db.Close()

		breakTime := time.Duration(cfg.BreakTimeMinutes) * time.Minute
		days, err := tr.HistoryByDay(breakTime)
		if err != nil {
			fatal(err)
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"Date", "Task", "Start", "End", "Duration"})
		for _, day := range days {
			for _, e := range day.Entries {
				tw.AppendRow(table.Row{
					e.Date,
					e.TaskName,
					e.StartTime.Format("15:04"),
					e.EndTime.Format("15:04"),
					timeutil.FormatDuration(e.EndTime.Sub(e.StartTime)),
				})
			}
			if day.Closed {
				tw.AppendRow(table.Row{day.Date, "(net work)", "", "", timeutil.FormatDuration(day.Work)})
				tw.AppendRow(table.Row{day.Date, "(other)", "", "", timeutil.FormatDuration(day.Other)})
			}
			tw.AppendSeparator()
		}
		tw.Render()
	},
}

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Manage the business day",
}

var dayEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the business day and print the summary",
	Run: func(cmd *cobra.Command, args []string) {
		_, tr := mustOpen()
		defer db.Close()

		if tr.State().Active != nil {
			fatal(fmt.Errorf("a task is still being timed, stop it first"))
		}

		ts := timestampFlag(cmd, tr)
		summary, err := tr.EndDay(ts)
		if err != nil {
			fatal(err)
		}
		printSummary(summary)
	},
}

// mustOpen wires config, database (with migrations) and the tracker.
// Storage being unavailable at startup is fatal.
func mustOpen() (*config.Config, *tracker.Tracker) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	database, err := db.OpenAndMigrate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	sessionPath, err := config.SessionPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tr := tracker.New(database, session.NewStore(sessionPath))
	if err := tr.Open(); err != nil {
		logError(err)
		fmt.Fprintf(os.Stderr, "Error opening session: %v\n", err)
		os.Exit(1)
	}

	return cfg, tr
}

func timestampFlag(cmd *cobra.Command, tr *tracker.Tracker) (ts time.Time) {
	at, _ := cmd.Flags().GetString("at")
	if at == "" {
		return tr.Now()
	}
	ts, err := timeutil.ParseClock(at, tr.Now())
	if err != nil {
		fatal(err)
	}
	return ts
}

func printSummary(summary *tracker.Summary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Task", "Duration"})
	for _, line := range summary.Lines {
		tw.AppendRow(table.Row{line.Name, timeutil.FormatDuration(line.Duration)})
	}
	tw.AppendFooter(table.Row{"Total task time", timeutil.FormatDuration(summary.TotalTask)})
	tw.AppendFooter(table.Row{"Other time", timeutil.FormatDuration(summary.Other)})
	tw.AppendFooter(table.Row{"Total work time", timeutil.FormatDuration(summary.TotalWork)})
	tw.Render()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func init() {
	startCmd.Flags().String("at", "", "Start time as HH:MM (default: now)")
	startCmd.Flags().Bool("create", false, "Create the task if it does not exist")
	stopCmd.Flags().String("at", "", "End time as HH:MM (default: now)")
	dayEndCmd.Flags().String("at", "", "Business end time as HH:MM (default: now)")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskRenameCmd)
	taskCmd.AddCommand(taskRmCmd)
	taskCmd.AddCommand(taskListCmd)

	dayCmd.AddCommand(dayEndCmd)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logError(err error) {
	logPath, pathErr := config.ErrorLogPath()
	if pathErr != nil {
		return
	}

	// Ensure directory exists
	if err := config.EnsureDirectories(); err != nil {
		return
	}

	f, fileErr := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "[%s] %v\n", time.Now().Format(time.RFC3339), err)
}
