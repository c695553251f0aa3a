package action

import (
	"log/slog"

	"github.com/anatolykoptev/go-twitter-subagent/llm"
)

// Runtime is the host agent as seen by the action.
type Runtime interface {
	// Setting returns the named setting, or "" when unset.
	Setting(name string) string
	Logger() *slog.Logger
	Generator() llm.Generator
}

// Message is the conversation message that triggered the action.
type Message struct {
	UserID string
	RoomID string
	Text   string
}

// State is the conversation state rendered into the tweet prompt.
type State struct {
	AgentName              string
	RecentMessages         string
	Topics                 string
	PostDirections         string
	RecentPostInteractions string
}

func runtimeLogger(rt Runtime) *slog.Logger {
	if l := rt.Logger(); l != nil {
		return l
	}
	return slog.Default()
}
