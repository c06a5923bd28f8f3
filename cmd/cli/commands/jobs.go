package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmautz1/ai-agent-platform-sub002/internal/types"
)

// jobOutput represents the filtered output for a job
type jobOutput struct {
	ID     string `json:"id"`
	Agent  string `json:"agent_identifier"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status"`
}

// jobListOutput represents the filtered output for a list of jobs
type jobListOutput struct {
	Jobs  []jobOutput `json:"jobs"`
	Total int64       `json:"total"`
}

func init() {
	jobsCmd.AddCommand(listJobsCmd)
	jobsCmd.AddCommand(getJobCmd)
	jobsCmd.AddCommand(createJobCmd)
	jobsCmd.AddCommand(jobResultCmd)

	// Add flags
	listJobsCmd.Flags().IntP("limit", "l", 0, "Limit the number of jobs returned")
	listJobsCmd.Flags().Int("offset", 0, "Offset into the job list")
	listJobsCmd.Flags().String("status", "", "Filter jobs by status")

	getJobCmd.Flags().StringP("id", "i", "", "Job ID to fetch")
	_ = getJobCmd.MarkFlagRequired("id")

	jobResultCmd.Flags().StringP("id", "i", "", "Job ID to fetch the result for")
	_ = jobResultCmd.MarkFlagRequired("id")

	createJobCmd.Flags().StringP("user", "u", "", "Owning user ID")
	createJobCmd.Flags().StringP("agent", "a", "", "Agent identifier to run")
	createJobCmd.Flags().StringP("title", "t", "", "Human readable job title")
	createJobCmd.Flags().StringP("data", "d", "", "Job input payload as JSON")
	_ = createJobCmd.MarkFlagRequired("user")
	_ = createJobCmd.MarkFlagRequired("agent")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage jobs",
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		status, _ := cmd.Flags().GetString("status")

		// Call the API client
		response, err := apiClient.ListJobs(context.Background(), status, limit, offset)
		if err != nil {
			return fmt.Errorf("error fetching jobs: %w", err)
		}

		// Filter the response to only include relevant fields
		output := jobListOutput{
			Jobs:  make([]jobOutput, len(response.Jobs)),
			Total: response.Total,
		}
		for i, job := range response.Jobs {
			output.Jobs[i] = jobOutput{
				ID:     job.ID,
				Agent:  job.AgentID,
				Title:  job.Title,
				Status: job.Status.String(),
			}
		}

		return printJSON(output)
	},
}

var getJobCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a specific job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("id")

		job, err := apiClient.GetJob(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error fetching job: %w", err)
		}

		return printJSON(jobOutput{
			ID:     job.ID,
			Agent:  job.AgentID,
			Title:  job.Title,
			Status: job.Status.String(),
		})
	},
}

var jobResultCmd = &cobra.Command{
	Use:   "result",
	Short: "Get the result of a completed job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("id")

		result, err := apiClient.GetJobResult(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error fetching job result: %w", err)
		}

		return printJSON(result)
	},
}

var createJobCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetString("user")
		agentID, _ := cmd.Flags().GetString("agent")
		title, _ := cmd.Flags().GetString("title")
		data, _ := cmd.Flags().GetString("data")

		req := types.CreateJobRequest{
			UserID:  userID,
			AgentID: agentID,
			Title:   title,
		}
		if data != "" {
			if !json.Valid([]byte(data)) {
				return fmt.Errorf("data must be valid JSON")
			}
			req.Data = json.RawMessage(data)
		}

		job, err := apiClient.CreateJob(context.Background(), req)
		if err != nil {
			return fmt.Errorf("error creating job: %w", err)
		}

		return printJSON(jobOutput{
			ID:     job.ID,
			Agent:  job.AgentID,
			Title:  job.Title,
			Status: job.Status.String(),
		})
	},
}

// GetJobsCmd returns the jobs command
func GetJobsCmd() *cobra.Command {
	return jobsCmd
}
