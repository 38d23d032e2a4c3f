package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"noticias/dashboard/internal/models"
)

// SectionFeed binds one section to the feed URL that populates it.
type SectionFeed struct {
	Section models.Section `yaml:"section"`
	URL     string         `yaml:"url"`
}

type feedsFile struct {
	Feeds []SectionFeed `yaml:"feeds"`
}

// DefaultFeeds returns the built-in section to query-URL mapping.
func DefaultFeeds() []SectionFeed {
	return []SectionFeed{
		{Section: models.SectionCancilleria, URL: "https://www.bing.com/news/search?q=Cancilleria+Peru&format=RSS&setmkt=es-PE"},
		{Section: models.SectionPeru, URL: "https://www.bing.com/news/search?q=Peru&format=RSS&setmkt=es-PE"},
		{Section: models.SectionMundo, URL: "https://www.bing.com/news/search?q=Peru+(ONU+OR+OEA+OR+APEC+OR+Tratado+OR+Diplomacia+OR+Embajada)&format=RSS&setmkt=es-PE"},
	}
}

// LoadFeeds reads a section feed list from a YAML file, falling back to
// the built-in mapping when path is empty.
func LoadFeeds(path string) ([]SectionFeed, error) {
	if path == "" {
		return DefaultFeeds(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var file feedsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}
	if len(file.Feeds) == 0 {
		return nil, fmt.Errorf("feeds file %s contains no feeds", path)
	}

	for _, feed := range file.Feeds {
		if !feed.Section.Valid() {
			return nil, fmt.Errorf("feeds file %s has unknown section %q", path, feed.Section)
		}
		if feed.URL == "" {
			return nil, fmt.Errorf("feeds file %s has an empty url for section %s", path, feed.Section)
		}
	}

	return file.Feeds, nil
}
