// Package orchestrator drives a classified query through its agent plan
// and aggregates every agent's facility-bearing output into one
// structured, map-ready response.
package orchestrator

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ghfacilities/query-engine/internal/analyst"
	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/geocoder"
	"github.com/ghfacilities/query-engine/internal/geospatial"
	"github.com/ghfacilities/query-engine/internal/llm"
	"github.com/ghfacilities/query-engine/internal/planner"
	"github.com/ghfacilities/query-engine/internal/reasoner"
	"github.com/ghfacilities/query-engine/internal/search"
)

// defaultBudget is the total wall-clock budget for one plan's execution.
const defaultBudget = 10 * time.Second

// Classifier is the subset of the classifier's behaviour the orchestrator
// depends on, narrowed to keep this package's seams testable.
type Classifier interface {
	Classify(ctx context.Context, query string) (domain.Plan, error)
}

// Orchestrator wires the classifier and the five domain agents into a
// single query-to-response pipeline.
type Orchestrator struct {
	classifier  Classifier
	store       *corpus.Store
	analyst     *analyst.Analyst
	reasoner    *reasoner.Reasoner
	searcher    *search.Searcher
	geo         *geospatial.Agent
	planner     *planner.Planner
	llmProvider llm.Provider
	gazetteer   *geocoder.Gazetteer
	budget      time.Duration
}

// Config bundles everything an Orchestrator needs to run a plan.
type Config struct {
	Classifier  Classifier
	Store       *corpus.Store
	Analyst     *analyst.Analyst
	Reasoner    *reasoner.Reasoner
	Searcher    *search.Searcher
	Geo         *geospatial.Agent
	Planner     *planner.Planner
	LLMProvider llm.Provider
	Gazetteer   *geocoder.Gazetteer
	Budget      time.Duration
}

// New builds an Orchestrator from cfg, defaulting Budget to 10s.
func New(cfg Config) *Orchestrator {
	budget := cfg.Budget
	if budget <= 0 {
		budget = defaultBudget
	}
	return &Orchestrator{
		classifier: cfg.Classifier, store: cfg.Store, analyst: cfg.Analyst, reasoner: cfg.Reasoner,
		searcher: cfg.Searcher, geo: cfg.Geo, planner: cfg.Planner,
		llmProvider: cfg.LLMProvider, gazetteer: cfg.Gazetteer, budget: budget,
	}
}

// Run drives query through router -> agents -> aggregator and returns the
// structured response.
func (o *Orchestrator) Run(ctx context.Context, query string, startedAt time.Time) (domain.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, o.budget)
	defer cancel()

	requestID := uuid.NewString()
	var trace []domain.TraceStep

	routerStart := time.Now()
	plan, err := o.classifier.Classify(ctx, query)
	routerStep := domain.TraceStep{Agent: "router", Action: "classify", DurationMs: time.Since(routerStart).Milliseconds()}
	if err != nil {
		routerStep.Error = err.Error()
		trace = append(trace, routerStep)
		return domain.Response{RequestID: requestID, Query: query, Trace: trace, Partial: true}, err
	}
	routerStep.Summary = string(plan.Intent)
	trace = append(trace, routerStep)

	var results map[domain.AgentName]domain.AgentResult
	var agentTrace []domain.TraceStep
	if plan.Flow == domain.FlowParallel {
		results, agentTrace = o.runParallel(ctx, plan, query)
	} else {
		results, agentTrace = o.runSequential(ctx, plan, query)
	}
	trace = append(trace, agentTrace...)

	aggStart := time.Now()
	mapFacilities, citations := aggregate(results)
	summary := o.summarize(ctx, query, plan, results)
	aggStep := domain.TraceStep{Agent: "aggregator", Action: "aggregate", DurationMs: time.Since(aggStart).Milliseconds(), Summary: summary}
	trace = append(trace, aggStep)

	partial := false
	for _, r := range results {
		if r.Error != "" {
			partial = true
		}
	}
	if ctx.Err() != nil {
		partial = true
	}

	agentsUsed := make([]domain.AgentName, 0, len(plan.Agents))
	agentsUsed = append(agentsUsed, plan.Agents...)

	for name, r := range results {
		r.Citations = citations[name]
		results[name] = r
	}

	return domain.Response{
		RequestID: requestID, Query: query, Intent: plan.Intent, Confidence: plan.Confidence,
		AgentsUsed: agentsUsed, AgentResults: results, MapFacilities: mapFacilities,
		Summary: summary, Trace: trace, TotalDurationMs: time.Since(startedAt).Milliseconds(),
		Timestamp: startedAt.UTC().Format(time.RFC3339), Partial: partial,
	}, nil
}

// runSequential executes the plan's agents one after another, handing the
// searcher's hits to the agents that follow it.
func (o *Orchestrator) runSequential(ctx context.Context, plan domain.Plan, query string) (map[domain.AgentName]domain.AgentResult, []domain.TraceStep) {
	results := make(map[domain.AgentName]domain.AgentResult, len(plan.Agents))
	trace := make([]domain.TraceStep, 0, len(plan.Agents))

	var searchResults []*domain.Facility
	for _, agentName := range plan.Agents {
		if ctx.Err() != nil {
			trace = append(trace, domain.TraceStep{Agent: string(agentName), TimedOut: true, Error: ctx.Err().Error()})
			continue
		}
		start := time.Now()
		result := o.invoke(ctx, agentName, plan, query, searchResults)
		trace = append(trace, traceStepFor(agentName, result, time.Since(start)))
		results[agentName] = result

		if agentName == domain.AgentSearcher && result.SemanticSearch != nil {
			searchResults = o.facilitiesFromHits(result.SemanticSearch.Results)
		}
	}
	return results, trace
}

// runParallel executes every agent in the plan concurrently; none may
// depend on another's output, per the parallel-flow concurrency rule.
func (o *Orchestrator) runParallel(ctx context.Context, plan domain.Plan, query string) (map[domain.AgentName]domain.AgentResult, []domain.TraceStep) {
	results := make(map[domain.AgentName]domain.AgentResult, len(plan.Agents))
	trace := make([]domain.TraceStep, len(plan.Agents))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, agentName := range plan.Agents {
		i, agentName := i, agentName
		g.Go(func() error {
			start := time.Now()
			result := o.invoke(gctx, agentName, plan, query, nil)
			step := traceStepFor(agentName, result, time.Since(start))

			mu.Lock()
			results[agentName] = result
			trace[i] = step
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results, trace
}

func traceStepFor(agentName domain.AgentName, result domain.AgentResult, dur time.Duration) domain.TraceStep {
	return domain.TraceStep{
		Agent: string(agentName), Action: result.Action, DurationMs: dur.Milliseconds(),
		Error: result.Error,
	}
}

func (o *Orchestrator) invoke(ctx context.Context, agentName domain.AgentName, plan domain.Plan, query string, searchCandidates []*domain.Facility) domain.AgentResult {
	switch agentName {
	case domain.AgentAnalyst:
		return o.analyst.Handle(plan.Intent, query)
	case domain.AgentValidator:
		return o.reasoner.ValidateQuery(plan.Intent, query, searchCandidates)
	case domain.AgentSearcher:
		return o.runSearch(ctx, query)
	case domain.AgentGeo:
		return o.geo.Handle(plan.Intent, query)
	case domain.AgentPlanner:
		return o.planner.Handle(query)
	default:
		return domain.AgentResult{Agent: agentName, Error: "unknown agent"}
	}
}

// runSearch runs the searcher with self-correction: if its result is empty,
// it retries once without filters, after stripping a geocodable location
// qualifier from the query. The retry runs whether or not the first search
// applied a filter.
func (o *Orchestrator) runSearch(ctx context.Context, query string) domain.AgentResult {
	const k = 10
	result, err := o.searcher.Search(ctx, query, k)
	if err != nil {
		return domain.AgentResult{Agent: domain.AgentSearcher, Action: "semantic_search", Error: err.Error()}
	}
	if len(result.Results) == 0 {
		retryQuery := o.stripLocationQualifier(query)
		retried, retryErr := o.searcher.SearchUnfiltered(ctx, retryQuery, k)
		if retryErr == nil {
			retried.Retried = true
			result = retried
		}
	}
	return domain.AgentResult{Agent: domain.AgentSearcher, Action: "semantic_search", SemanticSearch: &result}
}

// locationQualifier matches a trailing " in X" / " near X" location phrase.
var locationQualifier = regexp.MustCompile(`(?i)\s+(?:in|near)\s+(.+)$`)

// stripLocationQualifier drops a trailing " in X"/" near X" phrase from
// query, but only when X actually geocodes: an unresolvable X is left in
// place so the unfiltered retry still searches the original query text,
// preserving the "exactly one retry" invariant as a best-effort fallback.
func (o *Orchestrator) stripLocationQualifier(query string) string {
	if o.gazetteer == nil {
		return query
	}
	m := locationQualifier.FindStringSubmatchIndex(query)
	if m == nil {
		return query
	}
	place := query[m[2]:m[3]]
	if _, ok := o.gazetteer.Geocode(place); !ok {
		return query
	}
	return query[:m[0]]
}

// facilitiesFromHits resolves the searcher's FacilityRef hits back to full
// Facility records, for the downstream validator to check against the
// constraint catalog.
func (o *Orchestrator) facilitiesFromHits(hits []domain.SemanticHit) []*domain.Facility {
	out := make([]*domain.Facility, 0, len(hits))
	for _, h := range hits {
		if f := o.store.Get(h.Facility.ID); f != nil {
			out = append(out, f)
		}
	}
	return out
}
