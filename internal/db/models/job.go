package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// JobCreatedAtField is the database field name for the job creation timestamp
	JobCreatedAtField = "created_at"
	// JobUpdatedAtField is the database field name for the job update timestamp
	JobUpdatedAtField = "updated_at"
)

// Execution source markers recorded on a job at creation time
const (
	// ExecutionSourceManual indicates the job was created by a direct user request
	ExecutionSourceManual = "manual"
	// ExecutionSourceScheduled indicates the job was created by the scheduler
	ExecutionSourceScheduled = "scheduled"
)

// JobStatus represents the current state of a job in the system
type JobStatus int

// Job status constants
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = iota
	// JobStatusPending indicates the job is waiting to be picked up by a worker
	JobStatusPending
	// JobStatusRunning indicates the job is currently executing
	JobStatusRunning
	// JobStatusCompleted indicates the job has finished successfully
	JobStatusCompleted
	// JobStatusFailed indicates the job has failed to complete
	JobStatusFailed
)

// jobStatusNames maps JobStatus values to their string representation
var jobStatusNames = []string{
	"unknown",
	"pending",
	"running",
	"completed",
	"failed",
}

// Job represents one requested agent execution and its lifecycle state
type Job struct {
	ID              string          `json:"id" gorm:"primaryKey"`
	UserID          string          `json:"user_id" gorm:"not null;index"`
	AgentID         string          `json:"agent_identifier" gorm:"not null;index"`
	Title           string          `json:"title"`
	Data            json.RawMessage `json:"data,omitempty" gorm:"type:jsonb"`
	Status          JobStatus       `json:"status" gorm:"index"`
	Result          string          `json:"result,omitempty" gorm:"type:text"`
	Error           string          `json:"error_message,omitempty" gorm:"type:text"`
	Priority        int             `json:"priority" gorm:"not null;default:0"`
	Tags            []string        `json:"tags,omitempty" gorm:"type:jsonb;serializer:json"`
	ScheduleID      string          `json:"schedule_id,omitempty" gorm:"index"`
	ExecutionSource string          `json:"execution_source" gorm:"index"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Age returns how long the job has existed relative to now
func (j *Job) Age(now time.Time) time.Duration {
	return now.Sub(j.CreatedAt)
}

// IsTerminal reports whether the status is terminal. No transition leads out
// of completed or failed.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ParseJobStatus converts a string representation of a job status to JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	for i, status := range jobStatusNames {
		if status == str {
			return JobStatus(i), nil
		}
	}
	return JobStatusUnknown, fmt.Errorf("invalid job status: %s", str)
}

func (s JobStatus) String() string {
	if int(s) < 0 || int(s) >= len(jobStatusNames) {
		return jobStatusNames[JobStatusUnknown]
	}
	return jobStatusNames[s]
}

// MarshalJSON implements the json.Marshaler interface for JobStatus
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// Validate ensures that the job data is valid
func (j *Job) Validate() error {
	if j.UserID == "" {
		return fmt.Errorf("job user_id cannot be empty")
	}
	if j.AgentID == "" {
		return fmt.Errorf("job agent_identifier cannot be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new job
func (j *Job) BeforeCreate(_ *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == JobStatusUnknown {
		j.Status = JobStatusPending
	}
	if j.ExecutionSource == "" {
		j.ExecutionSource = ExecutionSourceManual
	}
	return j.Validate()
}
