// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/pdiddy/blog-engine/pkg/types"
)

// FormatInstructions renders the JSON schema the model must follow when
// emitting a DocumentSummary. The schema is reflected from the type so
// the instructions cannot drift from the struct.
func FormatInstructions() (string, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(&types.DocumentSummary{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling summary schema: %w", err)
	}

	return "Respond with a single JSON object conforming to this JSON Schema. " +
		"Do not include any text outside the JSON object.\n\n" + string(data), nil
}
