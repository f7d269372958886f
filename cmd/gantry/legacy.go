package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// runLegacySummary implements the original bare-argument mode: decode
// the document with a stock YAML parser and print a job/step summary.
// It deliberately bypasses the analysis engine.
func runLegacySummary(cmd *cobra.Command, path string) error {
	source, err := readSource(path)
	if err != nil {
		return err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Parsed workflow: %s\n", path)

	jobs := mappingValue(&doc, "jobs")
	if jobs == nil || jobs.Kind != yaml.MappingNode {
		return nil
	}

	// Mapping nodes keep key/value pairs adjacent, so document order
	// survives the decode.
	fmt.Fprintf(out, "Jobs: %d\n", len(jobs.Content)/2)
	for i := 0; i+1 < len(jobs.Content); i += 2 {
		name := jobs.Content[i].Value
		steps := 0
		if seq := mappingValue(jobs.Content[i+1], "steps"); seq != nil && seq.Kind == yaml.SequenceNode {
			steps = len(seq.Content)
		}
		fmt.Fprintf(out, "  - %s: %d steps\n", name, steps)
	}
	return nil
}

// mappingValue returns the value node for key, descending through a
// document wrapper if present.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
