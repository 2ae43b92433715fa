package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/config"
)

// SchemaCmd prints the JSON Schema of the YAML config file. Output goes
// to stdout so it can be redirected into editor tooling.
type SchemaCmd struct {
	Compact bool `short:"c" help:"Compact JSON output (no indentation)."`
}

func (c *SchemaCmd) Run(cli *CLI) error {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.FileConfig{})
	schema.Title = "Agent Service Configuration Schema"
	schema.Description = "Schema for the optional agent-service YAML config file"

	encoder := json.NewEncoder(os.Stdout)
	if !c.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(schema); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return nil
}
