package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghfacilities/query-engine/internal/apperr"
	"github.com/ghfacilities/query-engine/internal/config"
	"github.com/ghfacilities/query-engine/internal/domain"
)

const testSnapshotJSON = `[
	{
		"id": "f1", "name": "Accra Heart Center", "city": "Accra", "region": "Greater Accra",
		"facility_type": "hospital", "organization_type": "government",
		"specialties": ["cardiology"], "equipment": ["CT"], "capabilities": ["ICU"],
		"capacity": 150, "doctors": 12, "latitude": 5.5364, "longitude": -0.2266
	},
	{
		"id": "f2", "name": "Kumasi General Hospital", "city": "Kumasi", "region": "Ashanti",
		"facility_type": "hospital", "organization_type": "government",
		"specialties": ["pediatrics"], "capacity": 100, "doctors": 9,
		"latitude": 6.6885, "longitude": -1.6244
	}
]`

func writeTestSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(testSnapshotJSON), 0644))
	return path
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		CorpusSnapshotPath:         writeTestSnapshot(t),
		VectorIndex:                config.VectorIndexConfig{Backend: "memory", Collection: "facilities"},
		LLM:                        config.LLMConfig{Provider: "anthropic", AnthropicKey: "test-key"},
		OrchestratorTimeoutSeconds: 5,
	}
}

func TestBuildEngine_WiresMemoryBackend(t *testing.T) {
	t.Parallel()
	eng, err := buildEngine(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer eng.Close()
	assert.NotNil(t, eng.orc)
}

func TestRunQuery_ReturnsClassifiedResponse(t *testing.T) {
	t.Parallel()
	eng, err := buildEngine(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer eng.Close()

	resp, err := eng.runQuery(context.Background(), "how many hospitals are there in Ghana")
	require.NoError(t, err)
	assert.Equal(t, "how many hospitals are there in Ghana", resp.Query)
	assert.NotEmpty(t, resp.Intent)
	assert.Contains(t, domain.AllIntents, resp.Intent)
}

func TestRunQuery_RejectsOverlongQuery(t *testing.T) {
	t.Parallel()
	eng, err := buildEngine(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer eng.Close()

	overlong := make([]byte, 2001)
	for i := range overlong {
		overlong[i] = 'a'
	}
	_, err = eng.runQuery(context.Background(), string(overlong))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
