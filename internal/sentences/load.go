package sentences

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/typeduelz/internal/model"
)

type corpusFile struct {
	Easy   []string `toml:"easy"`
	Medium []string `toml:"medium"`
	Hard   []string `toml:"hard"`
}

// LoadCorpus reads sentence overrides from a TOML file. A missing file yields an
// empty corpus, which means the built-in sentences are used for every tier.
func LoadCorpus(path string) (map[model.Difficulty][]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return map[model.Difficulty][]string{}, nil
		}
		return nil, fmt.Errorf("failed to stat sentences: %w", err)
	}
	var file corpusFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to decode sentences: %w", err)
	}
	corpus := map[model.Difficulty][]string{}
	for d, list := range map[model.Difficulty][]string{
		model.Easy:   file.Easy,
		model.Medium: file.Medium,
		model.Hard:   file.Hard,
	} {
		cleaned := cleanSentences(list)
		if len(list) > 0 && len(cleaned) == 0 {
			return nil, fmt.Errorf("sentences for %s are all blank", d)
		}
		if len(cleaned) > 0 {
			corpus[d] = cleaned
		}
	}
	return corpus, nil
}

func cleanSentences(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
