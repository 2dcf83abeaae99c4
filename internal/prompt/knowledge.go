package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// Knowledge is the static description of the organization and its portal
// that is sent with every request.
type Knowledge struct {
	Organization string           `yaml:"organization"`
	Roles        []RoleDefinition `yaml:"roles"`
	Modules      []ModuleCatalog  `yaml:"modules"`
	Rules        []string         `yaml:"rules"`
}

// RoleDefinition explains one portal role.
type RoleDefinition struct {
	Role        string `yaml:"role"`
	Description string `yaml:"description"`
}

// ModuleCatalog lists the fields of one portal module.
type ModuleCatalog struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Fields      []string `yaml:"fields"`
}

// DefaultKnowledge returns the knowledge compiled into the binary.
func DefaultKnowledge() (*Knowledge, error) {
	return parseKnowledge(defaultKnowledge)
}

// LoadKnowledge reads knowledge from a YAML file. An empty path returns the
// compiled-in default.
func LoadKnowledge(path string) (*Knowledge, error) {
	if path == "" {
		return DefaultKnowledge()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file: %w", err)
	}
	return parseKnowledge(data)
}

func parseKnowledge(data []byte) (*Knowledge, error) {
	var k Knowledge
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("failed to unmarshal knowledge: %w", err)
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return &k, nil
}

// Validate checks that the knowledge has something to say.
func (k *Knowledge) Validate() error {
	if strings.TrimSpace(k.Organization) == "" {
		return errors.New("knowledge: organization is required")
	}
	if len(k.Modules) == 0 {
		return errors.New("knowledge: at least one module is required")
	}
	return nil
}

// String renders the knowledge as plain text.
func (k *Knowledge) String() string {
	var b strings.Builder
	b.WriteString("ABOUT THE ORGANIZATION\n")
	b.WriteString(strings.TrimSpace(k.Organization))
	b.WriteString("\n")

	if len(k.Roles) > 0 {
		b.WriteString("\nPORTAL ROLES\n")
		for _, r := range k.Roles {
			fmt.Fprintf(&b, "- %s: %s\n", r.Role, r.Description)
		}
	}

	b.WriteString("\nPORTAL MODULES\n")
	for _, m := range k.Modules {
		fmt.Fprintf(&b, "- %s: %s\n", m.Name, m.Description)
		if len(m.Fields) > 0 {
			fmt.Fprintf(&b, "  Fields: %s\n", strings.Join(m.Fields, ", "))
		}
	}

	if len(k.Rules) > 0 {
		b.WriteString("\nOPERATING RULES\n")
		for _, r := range k.Rules {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return b.String()
}
