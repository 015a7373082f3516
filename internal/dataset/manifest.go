package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dataquill/tutorkit/internal/errors"
)

// manifestSchema validates external dataset manifests before they replace
// the built-in registry.
const manifestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["families"],
	"properties": {
		"families": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["name", "files"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"files": {
						"type": "array",
						"minItems": 1,
						"items": {
							"type": "object",
							"required": ["remote", "local", "kind"],
							"properties": {
								"remote": {"type": "string", "minLength": 1},
								"local": {"type": "string", "minLength": 1},
								"sha256": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
								"kind": {"enum": ["database", "csv"]},
								"table": {"type": "string"}
							},
							"additionalProperties": false
						}
					}
				},
				"additionalProperties": false
			}
		}
	},
	"additionalProperties": false
}`

type manifest struct {
	Families []Family `json:"families"`
}

// LoadManifest reads and validates a manifest file and returns it as a
// registry. Validation failures report every violation, not just the first.
func LoadManifest(path string) (map[string]Family, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrManifestInvalid, err)
	}
	if !result.Valid() {
		msg := ""
		for _, desc := range result.Errors() {
			msg += "; " + desc.String()
		}
		return nil, fmt.Errorf("%w%s", errors.ErrManifestInvalid, msg)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrManifestInvalid, err)
	}

	registry := make(map[string]Family, len(m.Families))
	for _, fam := range m.Families {
		for i := range fam.Files {
			if fam.Files[i].Kind == KindCSV && fam.Files[i].Table == "" {
				return nil, fmt.Errorf("%w: family %s file %s: csv files need a table name",
					errors.ErrManifestInvalid, fam.Name, fam.Files[i].Local)
			}
		}
		registry[fam.Name] = fam
	}
	return registry, nil
}
