// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config registers defaults with viper and decodes the layered
// configuration (flags, environment, config file) into types.Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-radar/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g.
// RESEARCH_RADAR_FETCH_QUERY.
const EnvPrefix = "RESEARCH_RADAR"

// Keys that are not part of types.Config.
const (
	KeySecretsDir = "secrets.dir"
	KeyEnvFile    = "secrets.env_file"
)

// SetDefaults registers default values and environment binding on v.
// Credentials have no defaults.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := map[string]any{
		"log.level":  "info",
		"log.format": "console",

		KeySecretsDir: ".secrets",
		KeyEnvFile:    ".env",

		"fetch.source":      string(types.FetchArxiv),
		"fetch.query":       "6G AND security",
		"fetch.start":       0,
		"fetch.max_results": 10,
		"fetch.sort_by":     "submittedDate",
		"fetch.sort_order":  "descending",
		"fetch.base_url":    "",
		"fetch.max_retries": 0,
		"fetch.timeout":     30 * time.Second,
		"fetch.user_agent":  "research-radar/0.1",
		"fetch.output.path": "arxiv_papers_fixed.csv",

		"combine.first.path":  "real_papers.csv",
		"combine.second.path": "fake_patents.csv",
		"combine.output.path": "final_data.csv",

		"annotate.generator.url":        "https://api-inference.huggingface.co/models/gpt2",
		"annotate.generator.timeout":    60 * time.Second,
		"annotate.generator.user_agent": "research-radar/0.1",
		"annotate.rate_limit.interval":  5 * time.Second,
		"annotate.rate_limit.burst":     1,
		"annotate.source_filter":        types.ArxivHost,
		"annotate.topic":                "6G research",
		"annotate.parser":               "markers",
		"annotate.force":                false,
		"annotate.resume":               false,
		"annotate.input.path":           "final_data.csv",
		"annotate.input.encoding":       "latin-1",
		"annotate.output.path":          "final_data_processed.csv",

		"ledger.enabled": false,
		"ledger.path":    "data/ledger.db",
	}
	for _, prefix := range tableKeys {
		v.SetDefault(prefix+".delimiter", ",")
		v.SetDefault(prefix+".encoding", "utf-8")
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// tableKeys are the config prefixes that describe a table file.
var tableKeys = []string{
	"fetch.output",
	"combine.first",
	"combine.second",
	"combine.output",
	"annotate.input",
	"annotate.output",
}

// Load decodes v into a Config and checks values that no later stage
// validates.
func Load(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		Log: types.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Fetch: types.FetchConfig{
			HTTPConfig: httpConfig(v, "fetch"),
			Source:     types.FetchSource(strings.ToLower(v.GetString("fetch.source"))),
			Query:      v.GetString("fetch.query"),
			Start:      v.GetInt("fetch.start"),
			MaxResults: v.GetInt("fetch.max_results"),
			SortBy:     v.GetString("fetch.sort_by"),
			SortOrder:  v.GetString("fetch.sort_order"),
			BaseURL:    v.GetString("fetch.base_url"),
			MaxRetries: v.GetInt("fetch.max_retries"),
			Output:     tableFile(v, "fetch.output"),
		},
		Combine: types.CombineConfig{
			First:  tableFile(v, "combine.first"),
			Second: tableFile(v, "combine.second"),
			Output: tableFile(v, "combine.output"),
		},
		Annotate: types.AnnotateConfig{
			Generator: types.GeneratorConfig{
				HTTPConfig: httpConfig(v, "annotate.generator"),
				URL:        v.GetString("annotate.generator.url"),
				Token:      v.GetString("annotate.generator.token"),
			},
			RateLimit: types.RateLimitConfig{
				Interval: v.GetDuration("annotate.rate_limit.interval"),
				Burst:    v.GetInt("annotate.rate_limit.burst"),
			},
			SourceFilter: v.GetString("annotate.source_filter"),
			Topic:        v.GetString("annotate.topic"),
			Parser:       v.GetString("annotate.parser"),
			Force:        v.GetBool("annotate.force"),
			Resume:       v.GetBool("annotate.resume"),
			Input:        tableFile(v, "annotate.input"),
			Output:       tableFile(v, "annotate.output"),
		},
		Ledger: types.LedgerConfig{
			Enabled: v.GetBool("ledger.enabled"),
			Path:    v.GetString("ledger.path"),
		},
	}

	if cfg.Fetch.MaxResults < 0 {
		return cfg, fmt.Errorf("fetch.max_results must not be negative")
	}
	if cfg.Fetch.Start < 0 {
		return cfg, fmt.Errorf("fetch.start must not be negative")
	}
	if cfg.Annotate.RateLimit.Interval < 0 {
		return cfg, fmt.Errorf("annotate.rate_limit.interval must not be negative")
	}
	if cfg.Annotate.RateLimit.Burst < 1 {
		return cfg, fmt.Errorf("annotate.rate_limit.burst must be at least 1")
	}
	if cfg.Annotate.Resume && !cfg.Ledger.Enabled {
		return cfg, fmt.Errorf("annotate.resume requires ledger.enabled")
	}
	return cfg, nil
}

func httpConfig(v *viper.Viper, prefix string) types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:   v.GetDuration(prefix + ".timeout"),
		UserAgent: v.GetString(prefix + ".user_agent"),
	}
}

func tableFile(v *viper.Viper, prefix string) types.TableFile {
	return types.TableFile{
		Path:      v.GetString(prefix + ".path"),
		Delimiter: v.GetString(prefix + ".delimiter"),
		Encoding:  v.GetString(prefix + ".encoding"),
	}
}
