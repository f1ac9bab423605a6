// Package search mirrors created orders into Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Skotchmaster/shopsplit/services/order/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
)

const DefaultIndex = "orders"

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}
	return client, nil
}

type Indexer struct {
	Client *elasticsearch.Client
	Index  string
}

func NewIndexer(client *elasticsearch.Client) *Indexer {
	return &Indexer{Client: client, Index: DefaultIndex}
}

// IndexOrder writes order under its own id, so retries overwrite instead of
// duplicating.
func (ix *Indexer) IndexOrder(ctx context.Context, order *models.Order) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(order); err != nil {
		return fmt.Errorf("es: encode order: %w", err)
	}

	res, err := ix.Client.Index(
		ix.Index,
		&buf,
		ix.Client.Index.WithContext(ctx),
		ix.Client.Index.WithDocumentID(order.ID),
	)
	if err != nil {
		return fmt.Errorf("es: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("es: index: %s: %s", res.Status(), body)
	}
	return nil
}
