package httpapi

// GenerateOpenAPI builds a minimal OpenAPI 3.0 document describing the
// routes in this package. It is hand-built rather than reflected off the
// mux or codegen'd, since OpenAPI document generation is explicitly out
// of scope for this indexer (spec.md §1) — this is just enough structure
// for `generate-spec` to emit something a client can load.
func GenerateOpenAPI() map[string]any {
	addressParam := map[string]any{
		"name":     "address",
		"in":       "path",
		"required": true,
		"schema":   map[string]any{"type": "string"},
	}
	pageParams := []map[string]any{
		{"name": "page", "in": "query", "required": false, "schema": map[string]any{"type": "integer", "minimum": 1}},
		{"name": "page_size", "in": "query", "required": false, "schema": map[string]any{"type": "integer", "minimum": 1}},
	}

	queryOp := func(summary string) map[string]any {
		return map[string]any{
			"summary":    summary,
			"parameters": append([]map[string]any{addressParam}, pageParams...),
			"responses": map[string]any{
				"200": map[string]any{"description": "matching outputs"},
				"400": map[string]any{"description": "malformed address or pagination parameter"},
				"503": map[string]any{"description": "pool exhausted, or clock not yet set"},
			},
		}
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "stardust-indexer",
			"version": "1.0.0",
		},
		"paths": map[string]any{
			"/health": map[string]any{
				"get": map[string]any{
					"summary": "object counts",
					"responses": map[string]any{
						"200": map[string]any{"description": "objects_count, basic_objects_count, nft_objects_count"},
					},
				},
			},
			"/v1/basic/{address}":          map[string]any{"get": queryOp("raw basic outputs by address")},
			"/v1/basic/resolved/{address}": map[string]any{"get": queryOp("expiration-resolved basic outputs by address")},
			"/v1/nft/{address}":            map[string]any{"get": queryOp("raw NFT outputs by address")},
			"/v1/nft/resolved/{address}":   map[string]any{"get": queryOp("expiration-resolved NFT outputs by address")},
		},
	}
}
