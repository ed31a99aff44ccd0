// internal/connectors/policy/catalogue.go
package policy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"refi-pipeline/internal/common/cache"
	"refi-pipeline/internal/common/errors"
)

// catalogueSchema is checked before the fallback tier will trust a cached
// catalogue document. A cache entry that fails the schema is treated like a
// malformed upstream response rather than silently half-decoded.
const catalogueSchema = `{
  "type": "object",
  "required": ["products"],
  "properties": {
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["lenderName", "productName", "maxLtvPercent", "status"],
        "properties": {
          "lenderName":      {"type": "string", "minLength": 1},
          "productName":     {"type": "string", "minLength": 1},
          "interestRateMin": {"type": "number"},
          "interestRateMax": {"type": "number"},
          "maxLtvPercent":   {"type": "number", "exclusiveMinimum": 0, "maximum": 100},
          "status":          {"type": "string"}
        }
      }
    }
  }
}`

// loadCatalogue reads and validates the cached fallback catalogue.
func loadCatalogue(ctx context.Context, snapshots *cache.SnapshotStore) (*CatalogueDocument, error) {
	raw, err := snapshots.GetCatalogue(ctx)
	if err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogueSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, errors.NewMalformedResponseError("product-catalogue", err.Error())
	}
	if !result.Valid() {
		return nil, errors.NewMalformedResponseError("product-catalogue",
			fmt.Sprintf("catalogue failed schema validation: %v", result.Errors()))
	}

	var doc CatalogueDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.NewMalformedResponseError("product-catalogue", err.Error())
	}
	return &doc, nil
}

// storeCatalogue merges live-evaluated products into the cached catalogue so
// future fallback runs have something current to filter. Keyed by
// lender+product name; existing entries are replaced.
func storeCatalogue(ctx context.Context, snapshots *cache.SnapshotStore, doc *CatalogueDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return snapshots.PutCatalogue(ctx, raw)
}
