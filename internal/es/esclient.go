package es

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/webservicios/backoffice/internal/config"
)

// CatalogIndex holds the searchable projection of both catalog collections.
const CatalogIndex = "catalog"

func NewClient(cfg *config.Config) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ES_URL},
		Username:  cfg.ES_USER,
		Password:  cfg.ES_PASSWORD,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("es: client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}

	return client, nil
}

// IndexDocument upserts one document. id must be unique across both catalog
// collections, so callers prefix it with the collection name.
func IndexDocument(ctx context.Context, client *elasticsearch.Client, index, id, doc string) error {
	res, err := client.Index(
		index,
		strings.NewReader(doc),
		client.Index.WithDocumentID(id),
		client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: index %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es: index %s/%s: %s", index, id, res.Status())
	}
	return nil
}

func DeleteDocument(ctx context.Context, client *elasticsearch.Client, index, id string) error {
	res, err := client.Delete(
		index,
		id,
		client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	// 404 is fine: the entry may never have been indexed
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete %s/%s: %s", index, id, res.Status())
	}
	return nil
}
