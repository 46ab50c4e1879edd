package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/llm"
)

// summaryCharBudget bounds the JSON slice handed to the LLM collaborator.
const summaryCharBudget = 3000

const summarizeSystemPrompt = `You summarize structured healthcare facility query results for a Ghanaian health system planner. Be factual, concise, and cite facility names when relevant. Do not invent facilities or numbers not present in the data.`

// summarize produces the response's natural-language summary: an
// LLM-backed synthesis when a provider is configured, or a deterministic
// fallback built from the agent results' shape.
func (o *Orchestrator) summarize(ctx context.Context, query string, plan domain.Plan, results map[domain.AgentName]domain.AgentResult) string {
	if o.llmProvider == nil {
		return fallbackSummary(plan, results)
	}

	payload := budgetedJSON(results, summaryCharBudget)
	messages := []llm.Message{
		{Role: "system", Content: summarizeSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Query: %s\n\nResults:\n%s", query, payload)},
	}
	text, err := o.llmProvider.Chat(ctx, messages, 400, 0.2)
	if err != nil || strings.TrimSpace(text) == "" {
		return fallbackSummary(plan, results)
	}
	return text
}

// budgetedJSON marshals results and, if the output exceeds budget
// characters, binary-searches over how many agents to include (dropped
// from the tail) until the JSON fits.
func budgetedJSON(results map[domain.AgentName]domain.AgentResult, budget int) string {
	full, err := json.Marshal(results)
	if err != nil {
		return "{}"
	}
	if len(full) <= budget {
		return string(full)
	}

	names := make([]domain.AgentName, 0, len(results))
	for name := range results {
		names = append(names, name)
	}

	lo, hi := 0, len(names)
	best := "{}"
	for lo <= hi {
		mid := (lo + hi) / 2
		subset := make(map[domain.AgentName]domain.AgentResult, mid)
		for _, n := range names[:mid] {
			subset[n] = results[n]
		}
		encoded, err := json.Marshal(subset)
		if err != nil {
			hi = mid - 1
			continue
		}
		if len(encoded) <= budget {
			best = string(encoded)
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

func fallbackSummary(plan domain.Plan, results map[domain.AgentName]domain.AgentResult) string {
	var parts []string
	for _, name := range plan.Agents {
		result, ok := results[name]
		if !ok {
			continue
		}
		if result.Error != "" {
			parts = append(parts, fmt.Sprintf("%s failed: %s", name, result.Error))
			continue
		}
		count := len(result.FacilitiesForMap())
		parts = append(parts, fmt.Sprintf("%s (%s) returned %d mappable facilities", name, result.Action, count))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("No agents produced results for intent %s.", plan.Intent)
	}
	return strings.Join(parts, "; ")
}
