// Package config loads and validates the declarative job description.
// Validation failures surface as configuration errors before any record is
// read.
package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/molnia/dbatch/core"
	"github.com/molnia/dbatch/sink"
	"github.com/molnia/dbatch/stage"
)

type Config struct {
	Source SourceConfig `yaml:"source"`
	Chunk  ChunkConfig  `yaml:"chunk"`
	Fault  FaultConfig  `yaml:"fault"`
	Stages []stage.Spec `yaml:"stages"`
	Sink   SinkConfig   `yaml:"sink"`
}

type SourceConfig struct {
	// Type selects the retrieval mode: "cursor" or "paging".
	Type     string   `yaml:"type"`
	Database string   `yaml:"database"`
	URL      string   `yaml:"url"`
	Table    string   `yaml:"table"`
	Columns  []string `yaml:"columns,omitempty"`
	Where    string   `yaml:"where,omitempty"`
	OrderBy  string   `yaml:"orderBy,omitempty"`
	PageSize int      `yaml:"pageSize,omitempty"`
}

type ChunkConfig struct {
	Size int `yaml:"size"`
}

type FaultConfig struct {
	// RetryLimit distinguishes absent (default applies) from an explicit
	// zero, which disables retries.
	RetryLimit *int `yaml:"retryLimit"`
	SkipLimit  int  `yaml:"skipLimit"`
}

type SinkConfig struct {
	Destination string           `yaml:"destination"`
	Header      string           `yaml:"header,omitempty"`
	FooterLabel string           `yaml:"footerLabel,omitempty"`
	Delimiter   string           `yaml:"delimiter,omitempty"`
	Fields      []string         `yaml:"fields,omitempty"`
	Compression bool             `yaml:"compression,omitempty"`
	Encryption  EncryptionConfig `yaml:"encryption,omitempty"`
}

type EncryptionConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Recipient string `yaml:"recipient,omitempty"`
}

// Load reads and validates a job configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, core.Configf("os.ReadFile: %v", err)
	}

	c := &Config{}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, core.Configf("yaml.Unmarshal: %v", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Chunk.Size == 0 {
		c.Chunk.Size = 100
	}
	if c.Fault.RetryLimit == nil {
		retries := 3
		c.Fault.RetryLimit = &retries
	}
	if c.Source.Type == "paging" && c.Source.PageSize == 0 {
		c.Source.PageSize = 500
	}
	if c.Sink.FooterLabel == "" {
		c.Sink.FooterLabel = sink.DefaultFooterLabel
	}
	if c.Sink.Delimiter == "" {
		c.Sink.Delimiter = ","
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Source.Type == "":
		return core.Configf("source.type is required")
	case c.Source.Database == "":
		return core.Configf("source.database is required")
	case c.Source.URL == "":
		return core.Configf("source.url is required")
	case c.Source.Table == "":
		return core.Configf("source.table is required")
	case c.Sink.Destination == "":
		return core.Configf("sink.destination is required")
	}

	if c.Source.Type == "paging" {
		if c.Source.OrderBy == "" {
			return core.Configf("source.orderBy is required in paging mode and must be a stable unique key")
		}
		if c.Source.PageSize < 1 {
			return core.Configf("source.pageSize must be positive in paging mode")
		}
	}

	if c.Chunk.Size < 1 {
		return core.Configf("chunk.size must be positive")
	}
	if c.Fault.RetryLimit != nil && *c.Fault.RetryLimit < 0 {
		return core.Configf("fault.retryLimit must not be negative")
	}
	if c.Fault.SkipLimit < 0 {
		return core.Configf("fault.skipLimit must not be negative")
	}

	if utf8.RuneCountInString(c.Sink.Delimiter) != 1 {
		return core.Configf("sink.delimiter must be a single character, got %q", c.Sink.Delimiter)
	}

	if c.Sink.Encryption.Enabled {
		if c.Sink.Encryption.Recipient == "" {
			return core.Configf("sink.encryption.recipient is required when encryption is enabled")
		}
		if _, err := sink.ParseRecipient(c.Sink.Encryption.Recipient); err != nil {
			return core.Configf("sink.encryption.recipient: %v", err)
		}
	}

	if _, err := stage.FromSpecs(c.Stages); err != nil {
		return err
	}

	return nil
}

// Query builds the source query from the configuration.
func (c *Config) Query() *core.Query {
	return &core.Query{
		Table:    c.Source.Table,
		Columns:  c.Source.Columns,
		Where:    c.Source.Where,
		OrderBy:  c.Source.OrderBy,
		PageSize: c.Source.PageSize,
	}
}

// FaultPolicy builds the fault policy from the configuration.
func (c *Config) FaultPolicy() *core.FaultPolicy {
	policy := core.DefaultFaultPolicy()
	if c.Fault.RetryLimit != nil {
		policy.RetryLimit = *c.Fault.RetryLimit
	}
	policy.SkipLimit = c.Fault.SkipLimit
	return policy
}

// DelimiterRune returns the configured sink delimiter.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Sink.Delimiter)
	return r
}

// SinkOptions assembles the sink options from the configuration.
func (c *Config) SinkOptions() ([]sink.Option, error) {
	opts := []sink.Option{
		sink.WithFooterLabel(c.Sink.FooterLabel),
		sink.WithDelimiter(c.DelimiterRune()),
	}
	if c.Sink.Header != "" {
		opts = append(opts, sink.WithHeaderLine(c.Sink.Header))
	}
	if len(c.Sink.Fields) > 0 {
		opts = append(opts, sink.WithFields(c.Sink.Fields))
	}
	if c.Sink.Compression {
		opts = append(opts, sink.WithCompression())
	}
	if c.Sink.Encryption.Enabled {
		recipient, err := sink.ParseRecipient(c.Sink.Encryption.Recipient)
		if err != nil {
			return nil, core.Configf("sink.encryption.recipient: %v", err)
		}
		opts = append(opts, sink.WithEncryption(recipient))
	}
	return opts, nil
}

// Pipeline builds the stage pipeline from the configuration.
func (c *Config) Pipeline() (stage.Pipeline, error) {
	return stage.FromSpecs(c.Stages)
}

func (c *Config) String() string {
	return fmt.Sprintf("%s %s.%s -> %s", c.Source.Type, c.Source.Database, c.Source.Table, c.Sink.Destination)
}
