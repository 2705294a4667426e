package config

import (
	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/pkg/ptl"
)

// Trigger is the CI event metadata captured from the environment.
type Trigger struct {
	Event     string
	RefType   string
	RefName   string
	Workspace string
}

// EventName returns the trigger event, "push" when unset.
func (t Trigger) EventName() string {
	if t.Event == "" {
		return constants.EventPush
	}

	return t.Event
}

// Context returns the repository context, or nil unless both the ref type
// and ref name are non-empty. Values are not validated.
func (t Trigger) Context() *ptl.RepoContext {
	if t.RefType == "" || t.RefName == "" {
		return nil
	}

	return &ptl.RepoContext{Type: t.RefType, Name: t.RefName}
}

// TriggerFromEnv reads the GitHub Actions variables through getenv.
func TriggerFromEnv(getenv func(string) string) Trigger {
	return Trigger{
		Event:     getenv(constants.EnvEventName),
		RefType:   getenv(constants.EnvRefType),
		RefName:   getenv(constants.EnvRefName),
		Workspace: getenv(constants.EnvWorkspace),
	}
}
