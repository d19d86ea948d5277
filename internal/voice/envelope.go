// Package voice adapts the assistant platform's tool-call webhook to the
// core scheduling operations. It unwraps the transport envelope into
// typed per-tool arguments, routes to the right component, and formats
// the outcome back into the reply shape the platform reads aloud.
package voice

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the top-level webhook payload. The assistant wraps every
// tool invocation in a "message" object carrying the tool calls, the
// platform call record and the caller-id.
type Envelope struct {
	Message Message `json:"message"`
}

// Message groups the tool calls of one webhook delivery.
type Message struct {
	ToolCalls []ToolCall `json:"toolCalls"`
	Call      Call       `json:"call"`
	Customer  Customer   `json:"customer"`
}

// ToolCall is one tool invocation; its id must be echoed in the reply so
// the platform can correlate the result.
type ToolCall struct {
	ID       string       `json:"id"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the tool and carries its arguments.
type FunctionCall struct {
	Name      string      `json:"name"`
	Arguments ArgumentMap `json:"arguments"`
}

// Call is the platform's call record; its id is the external call
// identifier used for triage idempotency.
type Call struct {
	ID string `json:"id"`
}

// Customer carries the transport-level caller id, used as the phone
// fallback when a tool omits it.
type Customer struct {
	Number string `json:"number"`
}

// ReplyEnvelope is the JSON body returned to the platform.
type ReplyEnvelope struct {
	Results []ToolResult `json:"results"`
}

// ToolResult pairs the original tool-call id with the single spoken
// sentence describing the outcome.
type ToolResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// ArgumentMap holds a tool's named arguments. The platform sends them
// either as a native JSON object or as a JSON-encoded string; both decode
// to the same map.
type ArgumentMap map[string]any

// UnmarshalJSON accepts an object or a string containing an object.
func (m *ArgumentMap) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return fmt.Errorf("voice: decode argument string: %w", err)
		}
		if strings.TrimSpace(encoded) == "" {
			*m = ArgumentMap{}
			return nil
		}
		data = []byte(encoded)
	}
	var plain map[string]any
	if err := json.Unmarshal(data, &plain); err != nil {
		return fmt.Errorf("voice: decode arguments: %w", err)
	}
	*m = plain
	return nil
}

// String returns the first non-blank value among the aliases, trimmed.
// Aliases are checked in order, so the canonical key always wins over
// legacy names.
func (m ArgumentMap) String(aliases ...string) string {
	for _, key := range aliases {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

// StringList returns the first present list among the aliases with its
// order preserved. A lone string value wraps into a single-element list.
// Absent keys yield nil; the caller decides the empty-list policy.
func (m ArgumentMap) StringList(aliases ...string) []string {
	for _, key := range aliases {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch items := v.(type) {
		case []any:
			out := make([]string, 0, len(items))
			for _, item := range items {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return items
		case string:
			if trimmed := strings.TrimSpace(items); trimmed != "" {
				return []string{items}
			}
			return []string{}
		}
	}
	return nil
}

// Raw returns the first present value among the aliases without
// conversion, for fields with their own coercion rules (urgency).
func (m ArgumentMap) Raw(aliases ...string) any {
	for _, key := range aliases {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
