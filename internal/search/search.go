// Package search indexes restaurants in Elasticsearch for the storefront
// search. MongoDB stays the source of truth; the index only returns ids.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodcart_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RestaurantIndex interface {
	Index(ctx context.Context, r *models.Restaurant) error
	Search(ctx context.Context, q models.RestaurantSearch) ([]primitive.ObjectID, int64, error)
}

type restaurantDoc struct {
	RestaurantName        string    `json:"restaurantName"`
	City                  string    `json:"city"`
	Country               string    `json:"country"`
	Cuisines              []string  `json:"cuisines"`
	DeliveryPrice         float64   `json:"deliveryPrice"`
	EstimatedDeliveryTime int       `json:"estimatedDeliveryTime"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

type ElasticIndex struct {
	client *elasticsearch.Client
	index  string
	logger zerolog.Logger
}

func NewElasticIndex(client *elasticsearch.Client, index string, logger zerolog.Logger) *ElasticIndex {
	return &ElasticIndex{
		client: client,
		index:  index,
		logger: logger.With().Str("component", "elastic").Logger(),
	}
}

func (e *ElasticIndex) Index(ctx context.Context, r *models.Restaurant) error {
	data, err := json.Marshal(restaurantDoc{
		RestaurantName:        r.RestaurantName,
		City:                  r.City,
		Country:               r.Country,
		Cuisines:              r.Cuisines,
		DeliveryPrice:         r.DeliveryPrice,
		EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		LastUpdated:           r.LastUpdated,
	})
	if err != nil {
		return fmt.Errorf("encode restaurant: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: r.ID.Hex(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("index restaurant: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index restaurant %s: %s", r.ID.Hex(), res.Status())
	}

	e.logger.Debug().Str("restaurant_id", r.ID.Hex()).Msg("restaurant indexed")
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *ElasticIndex) Search(ctx context.Context, q models.RestaurantSearch) ([]primitive.ObjectID, int64, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(BuildQuery(q)); err != nil {
		return nil, 0, fmt.Errorf("encode search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, 0, fmt.Errorf("search restaurants: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search restaurants: %s", res.Status())
	}

	var body searchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(body.Hits.Hits))
	for _, hit := range body.Hits.Hits {
		id, err := primitive.ObjectIDFromHex(hit.ID)
		if err != nil {
			e.logger.Warn().Str("doc_id", hit.ID).Msg("skipping search hit with invalid id")
			continue
		}
		ids = append(ids, id)
	}

	return ids, body.Hits.Total.Value, nil
}

// BuildQuery translates a storefront search into an Elasticsearch query body.
func BuildQuery(q models.RestaurantSearch) map[string]any {
	var must, filter []map[string]any

	if q.City != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{"query": q.City, "fields": []string{"city", "country"}},
		})
	}
	if q.Query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{"query": q.Query, "fields": []string{"restaurantName", "cuisines"}},
		})
	}
	for _, c := range q.Cuisines {
		filter = append(filter, map[string]any{
			"match": map[string]any{"cuisines": map[string]any{"query": c, "operator": "and"}},
		})
	}

	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	query := map[string]any{"match_all": map[string]any{}}
	if len(must) > 0 || len(filter) > 0 {
		query = map[string]any{"bool": map[string]any{"must": must, "filter": filter}}
	}

	return map[string]any{
		"query":            query,
		"from":             (page - 1) * size,
		"size":             size,
		"sort":             buildSort(q.SortOption),
		"track_total_hits": true,
		"_source":          false,
	}
}

func buildSort(option string) []map[string]any {
	switch option {
	case "deliveryPrice", "estimatedDeliveryTime":
		return []map[string]any{{option: "asc"}}
	default:
		return []map[string]any{{"lastUpdated": "desc"}}
	}
}
