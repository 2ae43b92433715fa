package schema

import "fmt"

// TaskState tracks a background task's lifecycle.
type TaskState string

const (
	TaskStateNew      TaskState = "new"
	TaskStateRunning  TaskState = "running"
	TaskStateComplete TaskState = "complete"
)

// TaskResult records how a completed task ended.
type TaskResult string

const (
	TaskResultSuccess TaskResult = "success"
	TaskResultError   TaskResult = "error"
)

// TaskData is progress information for a background task, delivered to
// clients as the custom_data of a "custom" ChatMessage.
type TaskData struct {
	Name   string         `json:"name"`
	RunID  string         `json:"run_id"`
	State  TaskState      `json:"state"`
	Result TaskResult     `json:"result,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Validate checks task lifecycle invariants.
func (t *TaskData) Validate() error {
	switch t.State {
	case TaskStateNew, TaskStateRunning, TaskStateComplete:
	default:
		return fmt.Errorf("invalid task state: %q", t.State)
	}
	if t.Result != "" && t.State != TaskStateComplete {
		return fmt.Errorf("result set on incomplete task")
	}
	return nil
}

// ToMessage wraps the task data in a custom chat message.
func (t *TaskData) ToMessage() ChatMessage {
	return ChatMessage{
		Type:    MessageTypeCustom,
		Content: "",
		CustomData: map[string]any{
			"name":   t.Name,
			"run_id": t.RunID,
			"state":  string(t.State),
			"result": string(t.Result),
			"data":   t.Data,
		},
	}
}
