package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/vigil/pkg/logsource"
	"gopkg.in/yaml.v3"
)

// Config is a job file: which automata to check against which logs.
//
//	source:
//	  timestamp_pattern: '^(?<ts>\d+) '
//	workers: 4
//	tools: tools.yaml
//	jobs:
//	  - automaton: contracts/boot.yaml
//	    log: logs/boot.log
//	    params: {deadline: 5s}
type Config struct {
	Source   logsource.Config  `yaml:"source"`
	Workers  int               `yaml:"workers"`
	RedisURL string            `yaml:"redis_url"`
	Tools    string            `yaml:"tools"`
	Params   map[string]string `yaml:"params"`
	Jobs     []JobConfig       `yaml:"jobs"`
}

// JobConfig is one automaton checked against one log.
type JobConfig struct {
	Name      string            `yaml:"name"`
	Automaton string            `yaml:"automaton"`
	Log       string            `yaml:"log"`
	Params    map[string]string `yaml:"params"`
	// Source overrides the file-wide log source settings for this job.
	Source *logsource.Config `yaml:"source"`
}

// LoadConfig reads a job file. Relative paths inside it are resolved against the
// file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if cfg.Tools != "" {
		cfg.Tools = resolve(dir, cfg.Tools)
	}
	for i := range cfg.Jobs {
		j := &cfg.Jobs[i]
		if j.Automaton == "" || j.Log == "" {
			return nil, fmt.Errorf("config %s: job %d needs both automaton and log", path, i+1)
		}
		j.Automaton = resolve(dir, j.Automaton)
		j.Log = resolve(dir, j.Log)
	}
	return &cfg, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
