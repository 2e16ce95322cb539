// Package server streams MacroSolver solves over a WebSocket connection:
// a client posts a settings document, the server runs the solve and
// relays Progress updates followed by the final Solution (or an Error).
// Every frame is a Message{Type, Data, Timestamp} envelope whose
// json.RawMessage payload is decoded per message type.
package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies the shape of Message.Data.
type MessageType string

const (
	MessageTypeSolveRequest MessageType = "solve_request"
	MessageTypeProgress     MessageType = "progress"
	MessageTypeSolution     MessageType = "solution"
	MessageTypeError        MessageType = "error"
)

// Message is the envelope every frame is sent as.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage marshals data into a Message of the given type.
func NewMessage(t MessageType, data interface{}) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: t, Data: raw, Timestamp: time.Now()}, nil
}

// SolveRequestData is the client->server request: a settings document
// in the same JSON shape config.Document accepts, except that the
// solver block has no max_threads field.
type SolveRequestData struct {
	Recipe  RecipeData  `json:"recipe"`
	Crafter CrafterData `json:"crafter"`
	Solver  SolverData  `json:"solver,omitempty"`
}

type RecipeData struct {
	MaxProgress   uint32 `json:"max_progress"`
	MaxQuality    uint32 `json:"max_quality"`
	MaxDurability int16  `json:"max_durability"`
	BaseProgress  uint32 `json:"base_progress"`
	BaseQuality   uint32 `json:"base_quality"`
}

type CrafterData struct {
	MaxCP          int16    `json:"max_cp"`
	JobLevel       uint8    `json:"job_level"`
	AllowedActions []string `json:"allowed_actions,omitempty"`
}

type SolverData struct {
	BackloadProgress          bool `json:"backload_progress,omitempty"`
	AllowUnsoundBranchPruning bool `json:"allow_unsound_branch_pruning,omitempty"`
	// Omitting this keeps the solver's default of returning the best
	// reachable quality, same as config.Solver.
	AllowNonMaxQualitySolutions *bool `json:"allow_non_max_quality_solutions,omitempty"`
	Adversarial                 bool  `json:"adversarial,omitempty"`
}

// ProgressData mirrors solver.Progress for the wire.
type ProgressData struct {
	NodesExpanded uint64 `json:"nodes_expanded"`
	BestQuality   uint32 `json:"best_quality"`
}

// SolutionData is the final result: the flattened action list and the
// state it reaches.
type SolutionData struct {
	Actions  []string `json:"actions"`
	Progress uint32   `json:"progress"`
	Quality  uint32   `json:"quality"`
	Steps    int      `json:"steps"`
	Duration int      `json:"duration"`
}

// ErrorData reports a request that could not be solved.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
