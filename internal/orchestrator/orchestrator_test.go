package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghfacilities/query-engine/internal/analyst"
	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/embedding"
	"github.com/ghfacilities/query-engine/internal/geocoder"
	"github.com/ghfacilities/query-engine/internal/geospatial"
	"github.com/ghfacilities/query-engine/internal/planner"
	"github.com/ghfacilities/query-engine/internal/reasoner"
	"github.com/ghfacilities/query-engine/internal/search"
	"github.com/ghfacilities/query-engine/internal/testhelpers"
	"github.com/ghfacilities/query-engine/internal/vectorindex"
)

type fakeClassifier struct {
	plan domain.Plan
	err  error
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (domain.Plan, error) {
	return f.plan, f.err
}

func fixtureFacilities() []*domain.Facility {
	return []*domain.Facility{
		{ID: "f1", Name: "Accra Heart Center", City: "Accra", Region: "Greater Accra",
			FacilityType: domain.FacilityHospital, Latitude: 5.5364, Longitude: -0.2266, HasCoordinates: true,
			Specialties: map[domain.Specialty]struct{}{domain.SpecialtyCardiology: {}},
			Capacity:    150, Doctors: 12},
		{ID: "f2", Name: "Kumasi General", City: "Kumasi", Region: "Ashanti",
			FacilityType: domain.FacilityHospital, Latitude: 6.6885, Longitude: -1.6244, HasCoordinates: true,
			Specialties: map[domain.Specialty]struct{}{domain.SpecialtyPediatrics: {}},
			Capacity:    100, Doctors: 9},
	}
}

func buildOrchestrator(t *testing.T, plan domain.Plan) *Orchestrator {
	t.Helper()
	ctx := context.Background()
	store := corpus.New(fixtureFacilities())
	gaz, err := geocoder.LoadFrom([]byte(`
- name: Accra
  lat: 5.6037
  lng: -0.1870
- name: Kumasi
  lat: 6.6885
  lng: -1.6244
`))
	require.NoError(t, err)

	embedder := embedding.NewDeterministic(7)
	vIdx := vectorindex.NewMemory()
	require.NoError(t, vIdx.EnsureCollection(ctx, "facilities", search.VectorNames, embedding.Dim))
	for _, f := range store.All() {
		vectors := map[string][]float32{}
		for _, vn := range search.VectorNames {
			v, embErr := embedding.Embed(ctx, embedder, f.Name)
			require.NoError(t, embErr)
			vectors[vn] = v
		}
		require.NoError(t, vIdx.Upsert(ctx, "facilities", f.ID, vectors, map[string]string{
			"address_city": f.City, "address_stateOrRegion": f.Region, "facilityTypeId": string(f.FacilityType),
		}))
	}
	searcher := search.New(embedder, vIdx, store, "facilities")

	spatialIdx := geospatial.New(store.All(), gaz)

	return New(Config{
		Classifier: &fakeClassifier{plan: plan},
		Store:      store,
		Analyst:    analyst.New(store),
		Reasoner:   reasoner.New(store),
		Searcher:   searcher,
		Geo:        geospatial.NewAgent(spatialIdx, store),
		Planner:    planner.New(store, spatialIdx, gaz),
		Gazetteer:  gaz,
		Budget:     2 * time.Second,
	})
}

func TestRun_SingleFlowCountQuery(t *testing.T) {
	t.Parallel()
	plan := domain.Plan{Intent: domain.IntentCount, Confidence: 0.9, Agents: []domain.AgentName{domain.AgentAnalyst}, Flow: domain.FlowSingle}
	orc := buildOrchestrator(t, plan)
	resp, err := orc.Run(context.Background(), "how many hospitals in Ghana", time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.IntentCount, resp.Intent)
	assert.Contains(t, resp.AgentResults, domain.AgentAnalyst)
	assert.False(t, resp.Partial)
	assert.NotEmpty(t, resp.RequestID)
}

func TestRun_ParallelFlowRunsAllAgents(t *testing.T) {
	t.Parallel()
	plan := domain.Plan{
		Intent: domain.IntentComparison, Confidence: 0.8,
		Agents: []domain.AgentName{domain.AgentAnalyst, domain.AgentGeo}, Flow: domain.FlowParallel,
	}
	orc := buildOrchestrator(t, plan)
	resp, err := orc.Run(context.Background(), "compare Accra and Kumasi hospitals", time.Now())
	require.NoError(t, err)
	assert.Contains(t, resp.AgentResults, domain.AgentAnalyst)
	assert.Contains(t, resp.AgentResults, domain.AgentGeo)
}

func TestRunParallel_AgentsDoNotReceiveSearchCandidates(t *testing.T) {
	t.Parallel()
	plan := domain.Plan{
		Intent: domain.IntentComparison, Confidence: 0.8,
		Agents: []domain.AgentName{domain.AgentSearcher, domain.AgentValidator}, Flow: domain.FlowParallel,
	}
	orc := buildOrchestrator(t, plan)
	resp, err := orc.Run(context.Background(), "compare Accra Heart Center and Kumasi General", time.Now())
	require.NoError(t, err)

	// Under flow=parallel, the validator must not see the searcher's hits:
	// it falls back to scanning the whole corpus, not a chained subset.
	require.Contains(t, resp.AgentResults, domain.AgentValidator)
	validation := resp.AgentResults[domain.AgentValidator].Validation
	require.NotNil(t, validation)
}

func TestRun_SequentialFlowChainsSearcherIntoValidator(t *testing.T) {
	t.Parallel()
	plan := domain.Plan{
		Intent: domain.IntentValidation, Confidence: 0.8,
		Agents: []domain.AgentName{domain.AgentSearcher, domain.AgentValidator}, Flow: domain.FlowSequential,
	}
	orc := buildOrchestrator(t, plan)
	resp, err := orc.Run(context.Background(), "can Accra Heart Center really perform neurosurgery", time.Now())
	require.NoError(t, err)
	require.Contains(t, resp.AgentResults, domain.AgentValidator)
	assert.NotNil(t, resp.AgentResults[domain.AgentValidator].Validation)
}

func TestRun_SelfCorrectionRetriesExactlyOnceOnEmptyFilteredResult(t *testing.T) {
	t.Parallel()
	plan := domain.Plan{
		Intent: domain.IntentServiceSearch, Confidence: 0.8,
		Agents: []domain.AgentName{domain.AgentSearcher}, Flow: domain.FlowSingle,
	}
	orc := buildOrchestrator(t, plan)

	// Neither fixture facility is a pharmacy, so the city+type filter
	// matches zero facilities; the searcher must retry unfiltered once.
	resp, err := orc.Run(context.Background(), "pharmacies in Accra", time.Now())
	require.NoError(t, err)

	require.Contains(t, resp.AgentResults, domain.AgentSearcher)
	semantic := resp.AgentResults[domain.AgentSearcher].SemanticSearch
	require.NotNil(t, semantic)
	assert.True(t, semantic.Retried)
	assert.NotEmpty(t, semantic.Results)
}

func TestStripLocationQualifier_StripsWhenPlaceGeocodes(t *testing.T) {
	t.Parallel()
	orc := buildOrchestrator(t, domain.Plan{})
	assert.Equal(t, "pharmacies", orc.stripLocationQualifier("pharmacies in Accra"))
	assert.Equal(t, "hospitals", orc.stripLocationQualifier("hospitals near Kumasi"))
}

func TestStripLocationQualifier_LeavesQueryWhenPlaceUnresolvable(t *testing.T) {
	t.Parallel()
	orc := buildOrchestrator(t, domain.Plan{})
	assert.Equal(t, "pharmacies in Atlantis", orc.stripLocationQualifier("pharmacies in Atlantis"))
}

func TestRun_ClassifierErrorReturnsPartialResponse(t *testing.T) {
	t.Parallel()
	orc := buildOrchestrator(t, domain.Plan{})
	orc.classifier = &fakeClassifier{err: assertErr{}}
	resp, err := orc.Run(context.Background(), "???", time.Now())
	require.Error(t, err)
	assert.True(t, resp.Partial)
}

type assertErr struct{}

func (assertErr) Error() string { return "classification failed" }

func TestAggregate_DeduplicatesByFacilityID(t *testing.T) {
	t.Parallel()
	ref := domain.FacilityRef{ID: "f1", HasCoordinates: true}
	results := map[domain.AgentName]domain.AgentResult{
		domain.AgentAnalyst: {
			Agent: domain.AgentAnalyst, Action: "count_facilities",
			Count: &domain.CountResult{Facilities: []domain.FacilityRef{ref}},
		},
		domain.AgentGeo: {
			Agent: domain.AgentGeo, Action: "radius_search",
			RadiusSearch: &domain.RadiusSearchResult{Results: []domain.ScoredFacility{{Facility: ref}}},
		},
	}
	points, _ := aggregate(results)
	assert.Len(t, points, 1)
}

func TestBudgetedJSON_TruncatesToFitBudget(t *testing.T) {
	t.Parallel()
	results := map[domain.AgentName]domain.AgentResult{
		domain.AgentAnalyst:   {Agent: domain.AgentAnalyst, Action: "count_facilities", Count: &domain.CountResult{Count: 5}},
		domain.AgentValidator: {Agent: domain.AgentValidator, Action: "validate_constraints"},
	}
	out := budgetedJSON(results, 10)
	assert.LessOrEqual(t, len(out), 10)
}

func TestSummarize_FallsBackWithoutProvider(t *testing.T) {
	t.Parallel()
	orc := buildOrchestrator(t, domain.Plan{})
	plan := domain.Plan{Agents: []domain.AgentName{domain.AgentAnalyst}}
	results := map[domain.AgentName]domain.AgentResult{
		domain.AgentAnalyst: {Agent: domain.AgentAnalyst, Action: "count_facilities", Count: &domain.CountResult{Count: 2}},
	}
	summary := orc.summarize(context.Background(), "query", plan, results)
	assert.Contains(t, summary, "analyst")
}

func TestSummarize_UsesProviderWhenConfigured(t *testing.T) {
	t.Parallel()
	orc := buildOrchestrator(t, domain.Plan{})
	orc.llmProvider = &testhelpers.FakeProvider{Resp: "there are 2 hospitals"}
	plan := domain.Plan{Agents: []domain.AgentName{domain.AgentAnalyst}}
	results := map[domain.AgentName]domain.AgentResult{
		domain.AgentAnalyst: {Agent: domain.AgentAnalyst, Action: "count_facilities", Count: &domain.CountResult{Count: 2}},
	}
	summary := orc.summarize(context.Background(), "query", plan, results)
	assert.Equal(t, "there are 2 hospitals", summary)
}
