package core

import (
	"fmt"
	"strings"
)

// Status is the closed lifecycle state of a note.
// Deleted notes stay in the store; the state only hides them from filtered queries.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// Statuses lists the reference set in display order.
var Statuses = []Status{StatusActive, StatusArchived, StatusDeleted}

// ID returns the stable reference identifier of the status.
func (s Status) ID() string {
	return "status-" + string(s)
}

// Valid reports whether s is part of the reference set.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

// ParseStatus accepts either a status name or its reference id.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "status-"))
	if !s.Valid() {
		return "", Validation("INVALID_STATUS",
			fmt.Sprintf("Invalid status: %s. Use 'active', 'archived', or 'deleted'", v),
			map[string]any{"status": v})
	}
	return s, nil
}

// Purpose is the categorical intent of a note.
type Purpose string

const (
	PurposeWork     Purpose = "work"
	PurposePersonal Purpose = "personal"
	PurposeLearning Purpose = "learning"
	PurposeIdeas    Purpose = "ideas"
	PurposeTasks    Purpose = "tasks"
)

// Purposes lists the reference set in display order.
var Purposes = []Purpose{PurposeWork, PurposePersonal, PurposeLearning, PurposeIdeas, PurposeTasks}

var purposeDescriptions = map[Purpose]string{
	PurposeWork:     "Work-related notes",
	PurposePersonal: "Personal notes and reflections",
	PurposeLearning: "Learning and study notes",
	PurposeIdeas:    "Creative ideas and brainstorming",
	PurposeTasks:    "Tasks and to-do items",
}

// ID returns the stable reference identifier of the purpose.
func (p Purpose) ID() string {
	return "purpose-" + string(p)
}

// Description returns the human readable description.
func (p Purpose) Description() string {
	return purposeDescriptions[p]
}

// Valid reports whether p is part of the reference set.
func (p Purpose) Valid() bool {
	_, ok := purposeDescriptions[p]
	return ok
}

// ParsePurpose accepts either a purpose name or its reference id.
func ParsePurpose(v string) (Purpose, error) {
	p := Purpose(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "purpose-"))
	if !p.Valid() {
		return "", Validation("INVALID_PURPOSE",
			fmt.Sprintf("Invalid purpose: %s", v),
			map[string]any{"purpose_id": v})
	}
	return p, nil
}
