package vectorindex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// payloadIDField stores the caller's original facility id, since Qdrant
// point IDs must be a UUID or a positive integer.
const payloadIDField = "_facility_id"

type qdrantIndex struct {
	client *qdrant.Client
}

// NewQdrant dials the Qdrant gRPC endpoint described by dsn (e.g.
// "http://localhost:6334", optionally with an "?api_key=" query parameter).
func NewQdrant(dsn string) (Index, error) {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant dsn: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	portStr := parsed.Port()
	if portStr == "" {
		portStr = "6334"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port in qdrant dsn: %w", err)
	}

	cfg := &qdrant.Config{Host: host, Port: port}
	if parsed.Scheme == "https" {
		cfg.UseTLS = true
	}
	if apiKey := parsed.Query().Get("api_key"); apiKey != "" {
		cfg.APIKey = apiKey
	}

	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &qdrantIndex{client: client}, nil
}

func (q *qdrantIndex) EnsureCollection(ctx context.Context, collection string, vectorNames []string, dim int) error {
	exists, err := q.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("check collection exists: %w", err)
	}
	if exists {
		return nil
	}
	if dim <= 0 {
		return fmt.Errorf("vector dimension must be > 0")
	}
	vectorsConfig := make(map[string]*qdrant.VectorParams, len(vectorNames))
	for _, name := range vectorNames {
		vectorsConfig[name] = &qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}
	}
	return q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig:  qdrant.NewVectorsConfigMap(vectorsConfig),
	})
}

func pointIDFor(id string) (*qdrant.PointId, string) {
	if _, err := uuid.Parse(id); err == nil {
		return qdrant.NewIDUUID(id), ""
	}
	generated := uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
	return qdrant.NewIDUUID(generated), id
}

func (q *qdrantIndex) Upsert(ctx context.Context, collection, id string, vectors map[string][]float32, metadata map[string]string) error {
	pointID, originalID := pointIDFor(id)

	metadataAny := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		metadataAny[k] = v
	}
	if originalID != "" {
		metadataAny[payloadIDField] = originalID
	}

	namedVectors := make(map[string]*qdrant.Vector, len(vectors))
	for name, v := range vectors {
		cp := make([]float32, len(v))
		copy(cp, v)
		namedVectors[name] = qdrant.NewVector(cp...)
	}

	point := &qdrant.PointStruct{
		Id:      pointID,
		Vectors: qdrant.NewVectorsMap(namedVectors),
		Payload: qdrant.NewValueMap(metadataAny),
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         []*qdrant.PointStruct{point},
	})
	return err
}

func (q *qdrantIndex) Search(ctx context.Context, collection, vectorName string, query []float32, filter map[string]string, k int) ([]Hit, error) {
	if k <= 0 {
		k = 10
	}
	vec := make([]float32, len(query))
	copy(vec, query)

	var queryFilter *qdrant.Filter
	if len(filter) > 0 {
		must := make([]*qdrant.Condition, 0, len(filter))
		for key, val := range filter {
			must = append(must, qdrant.NewMatch(key, val))
		}
		queryFilter = &qdrant.Filter{Must: must}
	}

	limit := uint64(k)
	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQueryDense(vec),
		Using:          &vectorName,
		Limit:          &limit,
		Filter:         queryFilter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		id := r.Id.GetUuid()
		if id == "" {
			id = r.Id.String()
		}
		metadata := make(map[string]string)
		for k, v := range r.Payload {
			if k == payloadIDField {
				id = v.GetStringValue()
				continue
			}
			metadata[k] = v.GetStringValue()
		}
		hits = append(hits, Hit{ID: id, Score: float64(r.Score), Metadata: metadata})
	}
	return hits, nil
}

func (q *qdrantIndex) Healthy(ctx context.Context) error {
	_, err := q.client.HealthCheck(ctx)
	return err
}

func (q *qdrantIndex) Close() error {
	return q.client.Close()
}
