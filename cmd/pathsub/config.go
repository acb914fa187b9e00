package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pathsub/pathsub-go/pkg/pathtree"
)

// FileConfig is the YAML configuration file.
//
//	delay: 50ms
//	allow_unobserved_publish: false
//	tree:
//	  user:
//	    name: Al
//	    age: 1
type FileConfig struct {
	Delay                  time.Duration  `yaml:"delay"`
	AllowUnobservedPublish bool           `yaml:"allow_unobserved_publish"`
	Tree                   map[string]any `yaml:"tree"`
}

// loadFileConfig reads path. An empty path yields an empty configuration.
func loadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Delay < 0 {
		return cfg, fmt.Errorf("config %s: delay must not be negative, got %s", path, cfg.Delay)
	}
	cfg.Tree = pathtree.NormalizeTree(cfg.Tree)
	return cfg, nil
}
