package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/analogplace/internal/store"
)

var jobsDataDir string

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage persisted placement runs",
	Long:  `List and delete persisted placement solutions and their objective traces.`,
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all persisted placement runs",
	RunE:  runListJobs,
}

var deleteJobCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a persisted placement run",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteJob,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(deleteJobCmd)

	jobsCmd.PersistentFlags().StringVar(&jobsDataDir, "data", "./data", "Base directory for solution storage")
}

func runListJobs(cmd *cobra.Command, args []string) error {
	solutionStore, err := store.NewFSStore(jobsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create solution store: %w", err)
	}

	infos, err := solutionStore.ListSolutions()
	if err != nil {
		return fmt.Errorf("failed to list solutions: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No placement runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tTIMESTAMP\tORDER\tCELLS\tITERATIONS\tOBJECTIVE")
	fmt.Fprintln(w, "------\t---------\t-----\t-----\t----------\t---------")

	for _, info := range infos {
		displayID := info.JobID
		if len(displayID) > 12 {
			displayID = displayID[:12] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.6f\n",
			displayID,
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Order,
			info.NumCells,
			info.Iterations,
			info.Objective,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal runs: %d\n", len(infos))
	return nil
}

func runDeleteJob(cmd *cobra.Command, args []string) error {
	solutionStore, err := store.NewFSStore(jobsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create solution store: %w", err)
	}
	if err := solutionStore.DeleteSolution(args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	fmt.Printf("Deleted run %s\n", args[0])
	return nil
}
