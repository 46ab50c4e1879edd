package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ghfacilities/query-engine/internal/analyst"
	"github.com/ghfacilities/query-engine/internal/classifier"
	"github.com/ghfacilities/query-engine/internal/config"
	"github.com/ghfacilities/query-engine/internal/corpus"
	"github.com/ghfacilities/query-engine/internal/domain"
	"github.com/ghfacilities/query-engine/internal/embedding"
	"github.com/ghfacilities/query-engine/internal/geocoder"
	"github.com/ghfacilities/query-engine/internal/geospatial"
	"github.com/ghfacilities/query-engine/internal/llm"
	"github.com/ghfacilities/query-engine/internal/orchestrator"
	"github.com/ghfacilities/query-engine/internal/planner"
	"github.com/ghfacilities/query-engine/internal/reasoner"
	"github.com/ghfacilities/query-engine/internal/search"
	"github.com/ghfacilities/query-engine/internal/vectorindex"
)

// engine bundles the fully-wired orchestrator and the backend resources
// main needs to shut down cleanly on exit.
type engine struct {
	orc   *orchestrator.Orchestrator
	index vectorindex.Index
}

// buildEngine loads the corpus snapshot, builds the vector and spatial
// indexes, and wires every agent into an Orchestrator per the configured
// backends.
func buildEngine(ctx context.Context, cfg config.Config) (*engine, error) {
	store, err := corpus.LoadSnapshot(cfg.CorpusSnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus snapshot: %w", err)
	}
	log.Info().Int("facilities", store.Len()).Msg("corpus snapshot loaded")

	gaz, err := loadGazetteer(cfg.GazetteerPath)
	if err != nil {
		return nil, fmt.Errorf("load gazetteer: %w", err)
	}

	embedder := embedding.NewDeterministic(7)

	vIdx, err := buildVectorIndex(cfg.VectorIndex)
	if err != nil {
		return nil, fmt.Errorf("build vector index: %w", err)
	}
	if err := indexCorpus(ctx, vIdx, embedder, store, cfg.VectorIndex.Collection); err != nil {
		return nil, fmt.Errorf("index corpus: %w", err)
	}

	llmProvider, err := buildLLMProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("build llm provider: %w", err)
	}

	cls, err := classifier.New(ctx, embedder, llmProvider)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	spatialIdx := geospatial.New(store.All(), gaz)
	searcher := search.New(embedder, vIdx, store, cfg.VectorIndex.Collection)

	orc := orchestrator.New(orchestrator.Config{
		Classifier:  cls,
		Store:       store,
		Analyst:     analyst.New(store),
		Reasoner:    reasoner.New(store),
		Searcher:    searcher,
		Geo:         geospatial.NewAgent(spatialIdx, store),
		Planner:     planner.New(store, spatialIdx, gaz),
		LLMProvider: llmProvider,
		Gazetteer:   gaz,
		Budget:      time.Duration(cfg.OrchestratorTimeoutSeconds) * time.Second,
	})

	return &engine{orc: orc, index: vIdx}, nil
}

func (e *engine) runQuery(ctx context.Context, query string) (domain.Response, error) {
	if err := validateQuery(query); err != nil {
		return domain.Response{Query: query, Partial: true}, err
	}
	return e.orc.Run(ctx, query, time.Now())
}

func (e *engine) Close() {
	if e.index != nil {
		_ = e.index.Close()
	}
}

func loadGazetteer(path string) (*geocoder.Gazetteer, error) {
	if path == "" {
		return geocoder.Load()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer file %s: %w", path, err)
	}
	return geocoder.LoadFrom(raw)
}

func buildVectorIndex(cfg config.VectorIndexConfig) (vectorindex.Index, error) {
	switch cfg.Backend {
	case "", "memory":
		return vectorindex.NewMemory(), nil
	case "qdrant":
		return vectorindex.NewQdrant(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported vector backend: %s", cfg.Backend)
	}
}

// indexCorpus populates the vector index with one named vector per
// multi-vector template, per facility, matching the searcher's RRF fusion
// scheme.
func indexCorpus(ctx context.Context, idx vectorindex.Index, embedder embedding.Embedder, store *corpus.Store, collection string) error {
	if err := idx.EnsureCollection(ctx, collection, search.VectorNames, embedding.Dim); err != nil {
		return err
	}

	facilities := store.All()
	texts := make(map[string][]string, len(search.VectorNames))
	for _, vn := range search.VectorNames {
		texts[vn] = make([]string, len(facilities))
	}
	for i, f := range facilities {
		texts[search.VectorFullDocument][i] = search.DocumentText(f)
		texts[search.VectorClinicalDetail][i] = search.ClinicalDetailText(f)
		texts[search.VectorSpecialtiesContext][i] = search.SpecialtiesContextText(f)
	}

	embeddings := make(map[string][][]float32, len(search.VectorNames))
	for _, vn := range search.VectorNames {
		vecs, err := embedder.EmbedBatch(ctx, texts[vn])
		if err != nil {
			return fmt.Errorf("embed %s vectors: %w", vn, err)
		}
		embeddings[vn] = vecs
	}

	for i, f := range facilities {
		vectors := make(map[string][]float32, len(search.VectorNames))
		for _, vn := range search.VectorNames {
			vectors[vn] = embeddings[vn][i]
		}
		metadata := map[string]string{
			"address_city":          f.City,
			"address_stateOrRegion": f.Region,
			"facilityTypeId":        string(f.FacilityType),
			"organization_type":     f.OrganizationType,
		}
		if err := idx.Upsert(ctx, collection, f.ID, vectors, metadata); err != nil {
			return fmt.Errorf("upsert %s: %w", f.ID, err)
		}
	}
	return nil
}

func buildLLMProvider(cfg config.Config) (llm.Provider, error) {
	httpClient := http.DefaultClient
	provider, err := llm.Build(llm.BackendConfig{
		Provider: cfg.LLM.Provider,
		Anthropic: llm.AnthropicConfig{
			APIKey: cfg.LLM.AnthropicKey, BaseURL: cfg.LLM.AnthropicURL, Model: cfg.LLM.AnthropicModel,
		},
		OpenAI: llm.OpenAIConfig{
			APIKey: cfg.LLM.OpenAIKey, BaseURL: cfg.LLM.OpenAIURL, Model: cfg.LLM.OpenAIModel,
		},
	}, httpClient)
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enabled {
		return provider, nil
	}
	cache, err := llm.NewRedisResponseCache(cfg.Cache.Addr)
	if err != nil {
		log.Warn().Err(err).Msg("llm response cache unavailable, continuing without it")
		return provider, nil
	}
	model := cfg.LLM.AnthropicModel
	if cfg.LLM.Provider == "openai" {
		model = cfg.LLM.OpenAIModel
	}
	return llm.NewCachingProvider(provider, cache, model, time.Duration(cfg.Cache.TTLSeconds)*time.Second), nil
}
