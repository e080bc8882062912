package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/mergington/activities/internal/domain/model"
)

// schema describes a seed catalog file after YAML decoding.
const schema = `{
  "type": "object",
  "required": ["activities"],
  "additionalProperties": false,
  "properties": {
    "activities": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "description", "schedule", "max_participants"],
        "additionalProperties": false,
        "properties": {
          "name":             {"type": "string", "minLength": 1},
          "description":      {"type": "string"},
          "schedule":         {"type": "string"},
          "max_participants": {"type": "integer", "minimum": 0},
          "participants": {
            "type": "array",
            "uniqueItems": true,
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(schema)

type fileActivity struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Schedule        string   `yaml:"schedule"`
	MaxParticipants int      `yaml:"max_participants"`
	Participants    []string `yaml:"participants"`
}

type file struct {
	Activities []fileActivity `yaml:"activities"`
}

// Load reads and validates a YAML seed catalog from path.
func Load(path string) ([]model.Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadCatalog, err)
	}
	return Parse(data)
}

// Parse validates a YAML seed catalog and converts it to activities.
// The catalog order is preserved.
func Parse(data []byte) ([]model.Activity, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	seen := make(map[string]struct{}, len(f.Activities))
	out := make([]model.Activity, 0, len(f.Activities))
	for _, a := range f.Activities {
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate activity %q", ErrInvalidCatalog, a.Name)
		}
		seen[a.Name] = struct{}{}
		if len(a.Participants) > a.MaxParticipants {
			return nil, fmt.Errorf("%w: %q has %d participants but max_participants is %d",
				ErrInvalidCatalog, a.Name, len(a.Participants), a.MaxParticipants)
		}
		out = append(out, model.Activity{
			Name:            a.Name,
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    a.Participants,
		}.Clone())
	}
	return out, nil
}

// Validate checks a decoded catalog document against the catalog schema.
func Validate(doc any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
}
