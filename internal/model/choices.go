package model

// Closed enums. The stored value is the short code; Label is what people read.

// ProjectType is the platform a project targets.
type ProjectType string

const (
	ProjectBackEnd  ProjectType = "BAE"
	ProjectFrontEnd ProjectType = "FRE"
	ProjectIOS      ProjectType = "IOS"
	ProjectAndroid  ProjectType = "AND"
)

var ProjectTypes = []ProjectType{ProjectBackEnd, ProjectFrontEnd, ProjectIOS, ProjectAndroid}

func (t ProjectType) Valid() bool {
	switch t {
	case ProjectBackEnd, ProjectFrontEnd, ProjectIOS, ProjectAndroid:
		return true
	}
	return false
}

func (t ProjectType) Label() string {
	switch t {
	case ProjectBackEnd:
		return "Back-End"
	case ProjectFrontEnd:
		return "Front-End"
	case ProjectIOS:
		return "iOS"
	case ProjectAndroid:
		return "Android"
	}
	return string(t)
}

// Priority of an issue.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MED"
	PriorityHigh   Priority = "HIGH"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

// Tag classifies an issue.
type Tag string

const (
	TagBug     Tag = "BUG"
	TagFeature Tag = "FEAT"
	TagTask    Tag = "TASK"
)

var Tags = []Tag{TagBug, TagFeature, TagTask}

func (t Tag) Valid() bool {
	switch t {
	case TagBug, TagFeature, TagTask:
		return true
	}
	return false
}

func (t Tag) Label() string {
	switch t {
	case TagBug:
		return "Bug"
	case TagFeature:
		return "Feature"
	case TagTask:
		return "Task"
	}
	return string(t)
}

// Status of an issue. Any status may follow any other.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "INPR"
	StatusFinished   Status = "FINI"
)

var Statuses = []Status{StatusTodo, StatusInProgress, StatusFinished}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusFinished:
		return "Finished"
	}
	return string(s)
}
