package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmehdipour/dialer/internal/ai"
)

const systemPrompt = `You are a command parser for a phone dialing panel.
Parse the user's command and return a JSON object with the action and parameters.

Possible actions:
- "call_single": call a single phone number
- "call_all": start calling all numbers in the list
- "unknown": the command is unclear

Examples:
User: "Call 9876543210"
Response: {"action": "call_single", "number": "9876543210"}

User: "Start calling all numbers"
Response: {"action": "call_all"}

Return ONLY valid JSON, no other text.`

type aiDecision struct {
	Action string `json:"action"`
	Number string `json:"number"`
}

// AIResolver delegates to an external text service with a constrained
// prompt. Anything it cannot turn into a concrete action is ErrNotHandled
// so the chain falls through.
type AIResolver struct {
	client ai.Client
}

func NewAIResolver(client ai.Client) *AIResolver {
	return &AIResolver{client: client}
}

func (r *AIResolver) Name() string {
	if r.client != nil {
		return "ai-" + r.client.Name()
	}
	return "ai"
}

func (r *AIResolver) Attempt(ctx context.Context, command string, numbers []string) (Action, error) {
	if r.client == nil {
		return Action{}, ErrNotHandled
	}

	user := "User command: " + command
	if len(numbers) > 0 {
		user += "\nAvailable numbers: " + strings.Join(numbers, ", ")
	}

	content, err := r.client.Complete(ctx, systemPrompt, user)
	if err != nil {
		return Action{}, fmt.Errorf("ai interpret: %w", err)
	}

	var decision aiDecision
	if err := json.Unmarshal([]byte(extractJSON(content)), &decision); err != nil {
		return Action{}, fmt.Errorf("ai response not parseable: %w", err)
	}

	switch decision.Action {
	case string(ActionCallOne):
		if decision.Number == "" {
			return Action{}, ErrNotHandled
		}
		return Action{Kind: ActionCallOne, Number: decision.Number}, nil
	case string(ActionCallAll):
		return Action{Kind: ActionCallAll}, nil
	default:
		return Action{}, ErrNotHandled
	}
}

// extractJSON pulls the first balanced JSON object out of model output,
// tolerating code fences and prose around it.
func extractJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimLeft(trimmed, "json")
		trimmed = strings.TrimSpace(trimmed)
	}
	trimmed = strings.TrimSuffix(trimmed, "```")

	start := strings.IndexByte(trimmed, '{')
	if start < 0 {
		return trimmed
	}
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(trimmed); i++ {
		ch := trimmed[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return trimmed[start : i+1]
			}
		}
	}
	return trimmed
}
