package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/embedding"
	"github.com/ghfacilities/query-engine/internal/testhelpers"
)

func TestClassify_CountQueryRoutesToAnalyst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, err := New(ctx, embedding.NewDeterministic(1), nil)
	require.NoError(t, err)

	plan, err := c.Classify(ctx, "how many hospitals are in Ashanti region")
	require.NoError(t, err)

	assert.Equal(t, domain.IntentCount, plan.Intent)
	assert.Contains(t, plan.Agents, domain.AgentAnalyst)
}

func TestClassify_DistanceQueryRoutesToGeo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, err := New(ctx, embedding.NewDeterministic(1), nil)
	require.NoError(t, err)

	plan, err := c.Classify(ctx, "how far is Kumasi from Accra")
	require.NoError(t, err)

	assert.Equal(t, domain.IntentDistanceQuery, plan.Intent)
}

func TestClassify_LowConfidenceFallsBackToLLM(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := &testhelpers.FakeProvider{Resp: "INTENT: PLANNING\nCONFIDENCE: 0.9"}
	c, err := New(ctx, embedding.NewDeterministic(1), fake)
	require.NoError(t, err)

	// A vague query unlikely to cluster strongly with any exemplar set
	// under the deterministic embedder exercises the LLM fallback path
	// when the embedding gap stays narrow; this just asserts the fallback
	// wiring does not error and returns a valid intent when invoked.
	plan, err := c.Classify(ctx, "xyz zzz qqq")
	require.NoError(t, err)
	assert.NotEmpty(t, plan.Intent)
}

func TestClassify_NoEmbedderFallsBackToRegex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, err := New(ctx, nil, nil)
	require.NoError(t, err)

	plan, err := c.Classify(ctx, "how many clinics are in Volta")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentCount, plan.Intent)
}

func TestClassify_UnknownQueryDefaultsToGeneral(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, err := New(ctx, nil, nil)
	require.NoError(t, err)

	plan, err := c.Classify(ctx, "blah blah nothing matches anything here")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentGeneral, plan.Intent)
}

func TestClassify_UnmatchedQueryNeverDropsBelowConfidenceFloor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, err := New(ctx, nil, nil)
	require.NoError(t, err)

	plan, err := c.Classify(ctx, "blah blah nothing matches anything here")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, plan.Confidence, minConfidenceFloor)
}

func TestBuildPlan_ClampsConfidenceToFloor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, err := New(ctx, nil, nil)
	require.NoError(t, err)

	plan := c.buildPlan(domain.IntentGeneral, 0, nil)
	assert.Equal(t, minConfidenceFloor, plan.Confidence)
}

func TestSigmoid_AtZeroGapMinusPointZeroFive(t *testing.T) {
	t.Parallel()
	// gap=0.05 => x=0 => sigmoid=0.5
	assert.InDelta(t, 0.5, sigmoid(20*(0.05-0.05)), 1e-9)
}

func TestParseLLMClassification_RejectsInvalidLabel(t *testing.T) {
	t.Parallel()
	_, _, ok := parseLLMClassification("INTENT: NOT_A_REAL_INTENT\nCONFIDENCE: 0.9")
	assert.False(t, ok)
}

func TestParseLLMClassification_AcceptsValidLabel(t *testing.T) {
	t.Parallel()
	intent, conf, ok := parseLLMClassification("INTENT: PLANNING\nCONFIDENCE: 0.8")
	assert.True(t, ok)
	assert.Equal(t, domain.IntentPlanning, intent)
	assert.InDelta(t, 0.8, conf, 1e-9)
}
