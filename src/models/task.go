package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

var (
	ErrTaskNameTooShort = errors.New("task name must be at least 3 characters")
	ErrInvalidStatus    = errors.New("status must be todo, in_progress or done")
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

type TaskCategory struct {
	ID          uuid.UUID `json:"id"`
	HouseholdID uuid.UUID `json:"household_id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
}

type TaskAssignee struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

type Task struct {
	ID          uuid.UUID     `json:"id"`
	HouseholdID uuid.UUID     `json:"household_id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Status      TaskStatus    `json:"status"`
	Deadline    *time.Time    `json:"deadline"`
	CategoryID  *uuid.UUID    `json:"category_id"`
	AssigneeID  *uuid.UUID    `json:"assignee_id"`
	CreatorID   *uuid.UUID    `json:"creator_id"`
	Category    *TaskCategory `json:"category"`
	Assignee    *TaskAssignee `json:"assignee"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (t Task) Validate() error {
	if len([]rune(strings.TrimSpace(t.Name))) < 3 {
		return ErrTaskNameTooShort
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.Deadline != nil {
		return checkDate(*t.Deadline)
	}
	return nil
}

func (c TaskCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
