package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusInReview   TaskStatus = "in-review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview,
		TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

type TaskComment struct {
	ID        string    `json:"id"`
	User      UserRef   `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Task struct {
	ID          string        `gorm:"type:varchar(36);primarykey" json:"id"`
	Title       string        `gorm:"type:varchar(200);not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	ProjectID   string        `gorm:"type:varchar(36);index;not null" json:"project"`
	WorkspaceID string        `gorm:"type:varchar(36);index;not null" json:"workspace"`
	Status      TaskStatus    `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority    Priority      `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	AssignedTo  []UserRef     `gorm:"type:text;serializer:json" json:"assignedTo"`
	CreatedByID string        `gorm:"type:varchar(36);index;not null" json:"createdBy"`
	DueDate     *time.Time    `json:"dueDate"`
	Tags        []string      `gorm:"type:text;serializer:json" json:"tags"`
	Comments    []TaskComment `gorm:"type:text;serializer:json" json:"comments"`
	CompletedAt *time.Time    `json:"completedAt"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave stamps CompletedAt the first time the task is saved as completed.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.StampCompletion(time.Now())
	return nil
}

// StampCompletion sets CompletedAt when the task is completed and has never
// been stamped. Later transitions never clear or move the stamp.
func (t *Task) StampCompletion(now time.Time) {
	if t.Status == TaskStatusCompleted && t.CompletedAt == nil {
		stamp := now
		t.CompletedAt = &stamp
	}
}
