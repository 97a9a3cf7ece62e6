package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RawRule is one uncompiled admission rule. In YAML it is either a bare
// pattern string or a mapping with a pattern and a method restriction:
//
//	exclude:
//	  - "/admin/*"
//	  - pattern: "/api/*"
//	    methods: [POST, PUT]
type RawRule struct {
	Pattern string
	Methods []string
}

func (r *RawRule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Pattern = node.Value
		r.Methods = nil
		return nil
	}

	var wrapper struct {
		Pattern string   `yaml:"pattern"`
		Methods []string `yaml:"methods"`
	}
	if err := node.Decode(&wrapper); err != nil {
		return err
	}
	r.Pattern = wrapper.Pattern
	r.Methods = wrapper.Methods
	return nil
}

// RawScope holds the uncompiled rules for one scope. A non-empty
// IncludeOnly turns the scope into an allowlist.
type RawScope struct {
	IncludeOnly []RawRule `yaml:"include_only"`
	Exclude     []RawRule `yaml:"exclude"`
}

// RuleConfig is the full rule file: one global scope plus per-tenant
// scopes keyed by tenant identifier.
type RuleConfig struct {
	Global  RawScope            `yaml:"global"`
	Tenants map[string]RawScope `yaml:"tenants"`
}

// Scope returns the raw rules for tenant, or an empty scope when the
// tenant has none configured.
func (rc *RuleConfig) Scope(tenant string) RawScope {
	if rc == nil {
		return RawScope{}
	}
	if tenant == "" {
		return rc.Global
	}
	if scope, ok := rc.Tenants[tenant]; ok {
		return scope
	}
	return RawScope{}
}

// LoadRuleConfig reads rules.yml under rulePath. A missing file yields
// an empty RuleConfig: no configured rules, everything default-allowed.
func LoadRuleConfig(rulePath string) (*RuleConfig, error) {
	rc := &RuleConfig{Tenants: make(map[string]RawScope)}
	if rulePath == "" {
		return rc, nil
	}

	ruleFile := filepath.Join(rulePath, "rules.yml")
	data, err := os.ReadFile(ruleFile)
	if err != nil {
		if os.IsNotExist(err) {
			return rc, nil
		}
		return nil, fmt.Errorf("failed to read rules file %s: %w", ruleFile, err)
	}

	if err := yaml.Unmarshal(data, rc); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", ruleFile, err)
	}
	if rc.Tenants == nil {
		rc.Tenants = make(map[string]RawScope)
	}
	return rc, nil
}
