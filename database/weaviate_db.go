package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/tieubaoca/manualbot/config"
	"github.com/tieubaoca/manualbot/types"
)

const (
	BATCH_SIZE = 200

	manualClassPrefix = "Manual_"
	propContent       = "content"
	propChunkID       = "chunk_id"
)

// ManualClassName maps a free-form manual title onto a valid, stable Weaviate
// class name. The title itself is kept in the class description.
func ManualClassName(title string) string {
	sum := sha256.Sum256([]byte(title))
	return manualClassPrefix + hex.EncodeToString(sum[:])[:24]
}

func manualClass(title string) *models.Class {
	return &models.Class{
		Class:       ManualClassName(title),
		Description: title,
		Properties: []*models.Property{
			{Name: propContent, DataType: []string{"text"}},
			{Name: types.MetadataTitle, DataType: []string{"text"}},
			{Name: propChunkID, DataType: []string{"text"}},
		},
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
}

// SplitHost separates an optional scheme from a host, defaulting to http.
func SplitHost(host string) (scheme, hostPort string) {
	switch {
	case strings.HasPrefix(host, "https://"):
		return "https", strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		return "http", strings.TrimPrefix(host, "http://")
	default:
		return "http", host
	}
}

type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(cfg config.VectorStoreConfig) (*WeaviateStore, error) {
	scheme, host := SplitHost(cfg.Address())
	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		wcfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return &WeaviateStore{client: client}, nil
}

func (s *WeaviateStore) GetOrCreateCollection(ctx context.Context, name string) (Collection, error) {
	className := ManualClassName(name)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check class %s: %w", className, err)
	}
	if !exists {
		if err := s.createClass(ctx, name, className); err != nil {
			return nil, err
		}
	}
	return &weaviateCollection{client: s.client, title: name, className: className}, nil
}

// createClass creates the class for a manual. A concurrent request may create
// it first, in which case the rejected create is not an error.
func (s *WeaviateStore) createClass(ctx context.Context, title, className string) error {
	err := s.client.Schema().ClassCreator().WithClass(manualClass(title)).Do(ctx)
	if err == nil {
		log.Info().Str("manual", title).Str("class", className).Msg("Created manual class")
		return nil
	}
	exists, checkErr := s.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if checkErr == nil && exists {
		log.Debug().Str("manual", title).Msg("Manual class created concurrently")
		return nil
	}
	return fmt.Errorf("failed to create class %s: %w", className, err)
}

func (s *WeaviateStore) GetCollection(ctx context.Context, name string) (Collection, error) {
	className := ManualClassName(name)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check class %s: %w", className, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return &weaviateCollection{client: s.client, title: name, className: className}, nil
}

func (s *WeaviateStore) ListCollections(ctx context.Context) ([]string, error) {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	titles := make([]string, 0, len(schema.Classes))
	for _, class := range schema.Classes {
		if !strings.HasPrefix(class.Class, manualClassPrefix) {
			continue
		}
		titles = append(titles, class.Description)
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *WeaviateStore) DeleteCollection(ctx context.Context, name string) error {
	if _, err := s.GetCollection(ctx, name); err != nil {
		return err
	}
	if err := s.client.Schema().ClassDeleter().WithClassName(ManualClassName(name)).Do(ctx); err != nil {
		return fmt.Errorf("failed to delete class for %q: %w", name, err)
	}
	return nil
}

func (s *WeaviateStore) Heartbeat(ctx context.Context) (string, error) {
	live, err := s.client.Misc().LiveChecker().Do(ctx)
	if err != nil {
		return "", fmt.Errorf("weaviate live check failed: %w", err)
	}
	if !live {
		return "", errors.New("weaviate is not live")
	}
	meta, err := s.client.Misc().MetaGetter().Do(ctx)
	if err != nil || meta == nil {
		return "weaviate live", nil
	}
	return fmt.Sprintf("weaviate %s live", meta.Version), nil
}

type weaviateCollection struct {
	client    *weaviate.Client
	title     string
	className string
}

func (c *weaviateCollection) Name() string { return c.title }

func (c *weaviateCollection) Add(ctx context.Context, ids, documents []string, embeddings [][]float32, metadatas []map[string]string) error {
	if err := checkAddArgs(ids, documents, embeddings, metadatas); err != nil {
		return err
	}
	total := len(ids)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := c.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			properties := map[string]interface{}{
				propContent: documents[j],
				propChunkID: ids[j],
			}
			for k, v := range metadatas[j] {
				properties[k] = v
			}
			batcher = batcher.WithObjects(&models.Object{
				Class:      c.className,
				Properties: properties,
				Vector:     embeddings[j],
			})
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		for _, r := range resp {
			if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
				return fmt.Errorf("failed to insert batch %d-%d: %s", i, end, r.Result.Errors.Error[0].Message)
			}
		}
		log.Debug().Str("manual", c.title).Msgf("Inserted batch %d-%d of %d chunks", i, end, total)
	}
	return nil
}

func (c *weaviateCollection) Query(ctx context.Context, embedding []float32, nResults int) (*types.QueryResult, error) {
	fields := []graphql.Field{
		{Name: propContent},
		{Name: types.MetadataTitle},
		{Name: propChunkID},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}
	nearVector := c.client.GraphQL().NearVectorArgBuilder().WithVector(embedding)

	response, err := c.client.GraphQL().Get().
		WithClassName(c.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(resultLimit(nResults)).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(response.Errors) > 0 {
		return nil, fmt.Errorf("search failed: %s", response.Errors[0].Message)
	}
	return parseGetResponse(response.Data, c.className), nil
}

func (c *weaviateCollection) Count(ctx context.Context) (int, error) {
	response, err := c.client.GraphQL().Aggregate().
		WithClassName(c.className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("aggregate failed: %w", err)
	}
	if len(response.Errors) > 0 {
		return 0, fmt.Errorf("aggregate failed: %s", response.Errors[0].Message)
	}
	return parseAggregateCount(response.Data, c.className), nil
}

func parseGetResponse(data map[string]models.JSONObject, className string) *types.QueryResult {
	result := &types.QueryResult{}
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return result
	}
	items, ok := get[className].([]interface{})
	if !ok {
		return result
	}
	for _, item := range items {
		doc, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id := stringValue(doc[propChunkID])
		var distance float32
		if additional, ok := doc["_additional"].(map[string]interface{}); ok {
			if d, ok := additional["distance"].(float64); ok {
				distance = float32(d)
			}
			if id == "" {
				id = stringValue(additional["id"])
			}
		}
		result.IDs = append(result.IDs, id)
		result.Documents = append(result.Documents, stringValue(doc[propContent]))
		result.Metadatas = append(result.Metadatas, map[string]string{
			types.MetadataTitle: stringValue(doc[types.MetadataTitle]),
		})
		result.Distances = append(result.Distances, distance)
	}
	return result
}

func parseAggregateCount(data map[string]models.JSONObject, className string) int {
	agg, ok := data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0
	}
	rows, ok := agg[className].([]interface{})
	if !ok || len(rows) == 0 {
		return 0
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0
	}
	count, _ := meta["count"].(float64)
	return int(count)
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
