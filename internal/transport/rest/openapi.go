package rest

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

const DefaultOpenAPIPath = "./api/openapi.yml"

// LoadOpenAPI reads and validates the API document served at /openapi.yml.
func LoadOpenAPI(ctx context.Context, path string) (*openapi3.T, error) {
	if path == "" {
		path = DefaultOpenAPIPath
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document %s: %w", path, err)
	}
	return doc, nil
}
