package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kumbam-backend/internal/client"
	"kumbam-backend/internal/models"
	"kumbam-backend/internal/util"
)

// BanquetIndex mirrors the venue catalog into Elasticsearch for free-text
// search over name, category and location. A nil BanquetIndex is safe to
// call; indexing failures are logged and swallowed.
type BanquetIndex struct {
	es    *client.ESClient
	index string
}

func NewBanquetIndex(es *client.ESClient, index string) *BanquetIndex {
	return &BanquetIndex{es: es, index: index}
}

// Index writes or overwrites a hall document.
func (b *BanquetIndex) Index(ctx context.Context, hall *models.BanquetHall) {
	if b == nil || b.es == nil {
		return
	}

	res, err := b.es.IndexDocument(ctx, b.index, hall.ID, hall)
	if err != nil {
		util.Warn("Failed to index banquet hall",
			zap.String("hall_id", hall.ID),
			zap.Error(err))
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		util.Warn("Banquet hall index request rejected",
			zap.String("hall_id", hall.ID),
			zap.String("status", res.Status()))
	}
}

type searchResult struct {
	Hits struct {
		Hits []struct {
			Source models.BanquetHall `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a multi-field match over the hall index.
func (b *BanquetIndex) Search(ctx context.Context, q string) ([]*models.BanquetHall, error) {
	if b == nil || b.es == nil {
		return nil, fmt.Errorf("search index not configured")
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q,
				"fields": []string{"name^2", "category", "location"},
			},
		},
		"size": 50,
	}

	res, err := b.es.Search(ctx, b.index, query)
	if err != nil {
		return nil, fmt.Errorf("banquet search failed: %w", err)
	}

	var result searchResult
	if err := b.es.ParseResponse(res, &result); err != nil {
		return nil, fmt.Errorf("banquet search failed: %w", err)
	}

	halls := make([]*models.BanquetHall, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		hall := hit.Source
		halls = append(halls, &hall)
	}

	return halls, nil
}
