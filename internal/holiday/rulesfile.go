package holiday

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadRulesFile reads extra holiday rules from a deploy-provided YAML file.
// The file holds a list of Rule entries and lets an installation add local
// observances without code changes. Rules that fail validation are rejected
// as a group so a typo cannot silently drop a holiday.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read holiday rules file: %w", err)
	}

	var doc struct {
		Holidays []Rule `yaml:"holidays"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse holiday rules file: %w", err)
	}

	for i, r := range doc.Holidays {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("holiday rules file entry %d (%s): %w", i, r.ID, err)
		}
	}

	return doc.Holidays, nil
}
