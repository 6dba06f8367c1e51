// Package script loads batch scripts (YAML lists of commands with the reply
// shape each one expects) and runs them as a pipeline or a transaction.
package script

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// Script is a batch of commands sent together.
type Script struct {
	// Name identifies the script in logs.
	Name string `yaml:"name"`

	// Transaction wraps the commands in MULTI/EXEC instead of a plain pipeline.
	Transaction bool `yaml:"transaction,omitempty"`

	// Commands are sent in this order; replies are reported in the same order.
	Commands []Step `yaml:"commands"`
}

// Step is one command and the shape of its reply.
type Step struct {
	// Args is the command name followed by its arguments.
	Args []string `yaml:"args"`

	// Expect names the reply shape: none, int, long, double, bytes, string,
	// multi-bytes or multi-string. Empty means string.
	Expect string `yaml:"expect,omitempty"`
}

var expectShapes = map[string]pipeline.Shape{
	"":             pipeline.ShapeString,
	"none":         pipeline.ShapeNone,
	"int":          pipeline.ShapeInt,
	"long":         pipeline.ShapeLong,
	"double":       pipeline.ShapeDouble,
	"bytes":        pipeline.ShapeBytes,
	"string":       pipeline.ShapeString,
	"multi-bytes":  pipeline.ShapeMultiBytes,
	"multi-string": pipeline.ShapeMultiString,
}

// Shape returns the decoder shape the step expects.
func (s Step) Shape() pipeline.Shape {
	return expectShapes[strings.ToLower(s.Expect)]
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a script, rejecting unknown fields.
func Parse(data []byte) (*Script, error) {
	var s Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

// Validate checks that every step names a command and a known shape.
func (s *Script) Validate() error {
	if len(s.Commands) == 0 {
		return fmt.Errorf("commands list is required and must be non-empty")
	}
	for i, step := range s.Commands {
		if len(step.Args) == 0 || step.Args[0] == "" {
			return fmt.Errorf("commands[%d]: args must start with the command name", i)
		}
		if _, ok := expectShapes[strings.ToLower(step.Expect)]; !ok {
			return fmt.Errorf("commands[%d]: unknown expect %q", i, step.Expect)
		}
		switch strings.ToUpper(step.Args[0]) {
		case "MULTI", "EXEC", "DISCARD", "WATCH":
			return fmt.Errorf("commands[%d]: %s is managed by the runner", i, step.Args[0])
		}
	}
	return nil
}
