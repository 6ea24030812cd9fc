package domain

import (
	"strconv"
	"time"
)

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleOperator  Role = "operator"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one exchange unit in a session. Turns are append-only.
type ConversationTurn struct {
	Role   Role
	Text   string
	Action *ActionRecord
	At     time.Time
}

// ActionKind enumerates side-effecting operations recorded in the log.
type ActionKind string

const (
	ActionFileView    ActionKind = "FILE_VIEW"
	ActionFileEdit    ActionKind = "FILE_EDIT"
	ActionFileCreate  ActionKind = "FILE_CREATE"
	ActionDirList     ActionKind = "DIR_LIST"
	ActionCommandRun  ActionKind = "COMMAND_RUN"
	ActionTaskExecute ActionKind = "TASK_EXECUTE"
	ActionProjectSet  ActionKind = "PROJECT_SET"
)

// Icon returns the marker used in rendered session documents.
func (k ActionKind) Icon() string {
	switch k {
	case ActionFileView:
		return "📂"
	case ActionFileEdit:
		return "✏️"
	case ActionFileCreate:
		return "🆕"
	case ActionDirList:
		return "📁"
	case ActionCommandRun:
		return "⚡"
	case ActionTaskExecute:
		return "🚀"
	case ActionProjectSet:
		return "📍"
	default:
		return "📌"
	}
}

// Status tags set once an action has run.
const (
	StatusApplied  = "✅ Applied"
	StatusCreated  = "✅ Created"
	StatusExecuted = "✅ Executed"
)

// FieldStyle tells the renderer how to lay out a field value.
type FieldStyle int

const (
	// FieldInline renders as **Name:** `value`
	FieldInline FieldStyle = iota
	// FieldDiff renders as a fenced diff block
	FieldDiff
	// FieldBlock renders as a fenced plain-text block
	FieldBlock
)

// Field is one named attribute of an action, in render order.
type Field struct {
	Name  string
	Value string
	Style FieldStyle
}

// ActionDetails is the per-kind payload of an ActionRecord.
type ActionDetails interface {
	Kind() ActionKind
	Fields() []Field
	// Target names the file, directory or command the action touched.
	Target() string
}

// ActionRecord describes a side-effecting operation that was logged.
type ActionRecord struct {
	Details ActionDetails
	Status  string
	At      time.Time
}

// Kind returns the tag of the underlying details.
func (a ActionRecord) Kind() ActionKind {
	if a.Details == nil {
		return ""
	}
	return a.Details.Kind()
}

// FileView records a file displayed to the operator.
type FileView struct {
	Path  string
	Lines int
}

func (d FileView) Kind() ActionKind { return ActionFileView }
func (d FileView) Target() string   { return d.Path }
func (d FileView) Fields() []Field {
	return []Field{
		{Name: "File", Value: d.Path},
		{Name: "Lines", Value: strconv.Itoa(d.Lines)},
	}
}

// FileEdit records an approved edit.
type FileEdit struct {
	Path         string
	Instructions string
	Diff         string
}

func (d FileEdit) Kind() ActionKind { return ActionFileEdit }
func (d FileEdit) Target() string   { return d.Path }
func (d FileEdit) Fields() []Field {
	fields := []Field{{Name: "File", Value: d.Path}}
	if d.Instructions != "" {
		fields = append(fields, Field{Name: "Instructions", Value: d.Instructions})
	}
	return append(fields, Field{Name: "Diff", Value: d.Diff, Style: FieldDiff})
}

// FileCreate records an approved file creation.
type FileCreate struct {
	Path           string
	Description    string
	ContentPreview string
}

func (d FileCreate) Kind() ActionKind { return ActionFileCreate }
func (d FileCreate) Target() string   { return d.Path }
func (d FileCreate) Fields() []Field {
	fields := []Field{{Name: "File", Value: d.Path}}
	if d.Description != "" {
		fields = append(fields, Field{Name: "Description", Value: d.Description})
	}
	if d.ContentPreview != "" {
		fields = append(fields, Field{Name: "Preview", Value: d.ContentPreview, Style: FieldBlock})
	}
	return fields
}

// DirList records a directory listing.
type DirList struct {
	Path  string
	Count int
}

func (d DirList) Kind() ActionKind { return ActionDirList }
func (d DirList) Target() string   { return d.Path }
func (d DirList) Fields() []Field {
	return []Field{
		{Name: "Path", Value: d.Path},
		{Name: "Count", Value: strconv.Itoa(d.Count)},
	}
}

// CommandRun records a shell command issued by the operator.
type CommandRun struct {
	Command  string
	ExitCode int
	Output   string
}

func (d CommandRun) Kind() ActionKind { return ActionCommandRun }
func (d CommandRun) Target() string   { return d.Command }
func (d CommandRun) Fields() []Field {
	return []Field{
		{Name: "Command", Value: d.Command},
		{Name: "Exit Code", Value: strconv.Itoa(d.ExitCode)},
		{Name: "Output", Value: d.Output, Style: FieldBlock},
	}
}

// TaskExecute records an approved multi-step task.
type TaskExecute struct {
	Description string
	Plan        string
	Result      string
}

func (d TaskExecute) Kind() ActionKind { return ActionTaskExecute }
func (d TaskExecute) Target() string   { return d.Description }
func (d TaskExecute) Fields() []Field {
	fields := []Field{{Name: "Description", Value: d.Description}}
	if d.Plan != "" {
		fields = append(fields, Field{Name: "Plan", Value: d.Plan, Style: FieldBlock})
	}
	if d.Result != "" {
		fields = append(fields, Field{Name: "Result", Value: d.Result, Style: FieldBlock})
	}
	return fields
}

// ProjectSet records a change of working directory.
type ProjectSet struct {
	Path string
}

func (d ProjectSet) Kind() ActionKind { return ActionProjectSet }
func (d ProjectSet) Target() string   { return d.Path }
func (d ProjectSet) Fields() []Field {
	return []Field{{Name: "Path", Value: d.Path}}
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
