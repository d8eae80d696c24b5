package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML overlay read from CONFIG_FILE
type fileConfig struct {
	Retrieval struct {
		SimilarityThreshold *float64 `yaml:"similarity_threshold"`
		DefaultTopK         int      `yaml:"default_top_k"`
		MinTopK             int      `yaml:"min_top_k"`
		MaxTopK             int      `yaml:"max_top_k"`
		Debug               bool     `yaml:"debug"`
	} `yaml:"retrieval"`
	Chunking struct {
		Size    int  `yaml:"size"`
		Overlap *int `yaml:"overlap"`
	} `yaml:"chunking"`
	Embedding struct {
		Mode      string        `yaml:"mode"`
		Model     string        `yaml:"model"`
		BaseURL   string        `yaml:"base_url"`
		Timeout   time.Duration `yaml:"timeout"`
		Dimension int           `yaml:"dimension"`
	} `yaml:"embedding"`
}

// loadFile reads the overlay. An empty path or a missing file yields zero values.
func loadFile(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func orFloat(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func orIntPtr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func orDuration(v, def time.Duration) time.Duration {
	if v != 0 {
		return v
	}
	return def
}
