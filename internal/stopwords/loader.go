package stopwords

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Corpus is the on-disk layout of a stop-word file.
//
//	include_defaults: true
//	general: [a, the, of]
//	classification_triggers: [compare, trend]
//	place_types: [county, zip code]   # plurals are added automatically
//	extra: [per capita]
type Corpus struct {
	IncludeDefaults        bool     `yaml:"include_defaults"`
	General                []string `yaml:"general"`
	ClassificationTriggers []string `yaml:"classification_triggers"`
	PlaceTypes             []string `yaml:"place_types"`
	Extra                  []string `yaml:"extra"`
}

// Set composes the corpus into a Set.
func (c Corpus) Set() *Set {
	lists := [][]string{c.General, c.ClassificationTriggers, WithPlurals(c.PlaceTypes), c.Extra}
	if c.IncludeDefaults {
		lists = append(lists, GeneralStopWords, ClassificationTriggers, WithPlurals(PlaceTypes))
	}
	return Compose(lists...)
}

// Parse decodes a YAML corpus.
func Parse(data []byte) (*Set, error) {
	var corpus Corpus
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("failed to parse stop-word corpus: %w", err)
	}
	return corpus.Set(), nil
}

// LoadFile reads a YAML corpus from path.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read stop-word file %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}
