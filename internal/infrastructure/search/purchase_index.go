package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/vendora-app/vendora/internal/application"
	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/pkg/helpers"
)

const requestTimeout = 3 * time.Second

// PurchaseIndex keeps a denormalised copy of purchases in Elasticsearch for full-text lookup.
// Every document carries member_ids so searches are limited to what the caller may see.
type PurchaseIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewPurchaseIndex(es *elasticsearch.Client, index string) *PurchaseIndex {
	return &PurchaseIndex{ES: es, IndexName: index}
}

// member_ids must be a keyword field for the term filter in Search to match exact ids.
var purchaseMapping = []byte(`{
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "name":         {"type": "text"},
      "description":  {"type": "text"},
      "status":       {"type": "keyword"},
      "total_amount": {"type": "double"},
      "owner_id":     {"type": "keyword"},
      "member_ids":   {"type": "keyword"},
      "created_at":   {"type": "date"},
      "updated_at":   {"type": "date"}
    }
  }
}`)

// Ensure creates the index with its mapping if it does not exist yet.
func (x *PurchaseIndex) Ensure(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return helpers.EnsureIndex(c, x.ES, x.IndexName, purchaseMapping)
}

type purchaseDoc struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	OwnerID     string    `json:"owner_id"`
	MemberIDs   []string  `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDoc(p *entity.Purchase) purchaseDoc {
	d := purchaseDoc{
		ID:          p.ID,
		Name:        p.Name,
		Status:      string(p.Status),
		TotalAmount: p.TotalAmount,
		OwnerID:     p.UserID,
		MemberIDs:   p.MemberIDs(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	return d
}

func (x *PurchaseIndex) Index(ctx context.Context, p *entity.Purchase) error {
	b, err := json.Marshal(toDoc(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *PurchaseIndex) Remove(ctx context.Context, purchaseID string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: purchaseID}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match on name and description filtered to documents userID is a member of.
func (x *PurchaseIndex) Search(ctx context.Context, userID, q string, size int) ([]application.SearchHit, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^2", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"member_ids": userID},
				},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.IndexName), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64     `json:"_score"`
				Source purchaseDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]application.SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, application.SearchHit{
			ID:          h.Source.ID,
			Name:        h.Source.Name,
			Description: h.Source.Description,
			Status:      h.Source.Status,
			TotalAmount: h.Source.TotalAmount,
			Score:       h.Score,
		})
	}
	return out, nil
}

var _ application.PurchaseIndexer = (*PurchaseIndex)(nil)
