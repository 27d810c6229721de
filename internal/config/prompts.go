package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// DefaultPrompts are the built-in system prompts offered when the user has
// not saved any of their own.
func DefaultPrompts() map[string]string {
	return map[string]string{
		"Image search queries": "You are an expert at writing image search queries.\n\n" +
			"Read the text, find its distinct topics, and write one search query per topic. " +
			"Think about what should actually be in the picture and turn that into a short, concrete query.\n\n" +
			"Rules:\n" +
			"- at most 5 words per query\n" +
			"- one query per line\n" +
			"- concrete objects, not abstractions\n" +
			"- no numbering, no quotes, no explanations\n\n" +
			"Aim for 3-8 queries, each good enough to find an image illustrating one topic from the text.",
		"Simple": "Create short search queries for images matching the text. " +
			"Each query at most 3 words, one per line.",
	}
}

// LoadPrompts reads the custom prompts document from path. An absent or
// empty document yields the built-in defaults.
func LoadPrompts(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPrompts(), nil
		}
		return nil, fmt.Errorf("failed to read prompts: %w", err)
	}

	prompts := map[string]string{}
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	if len(prompts) == 0 {
		return DefaultPrompts(), nil
	}
	return prompts, nil
}

// SavePrompts writes the custom prompts document to path.
func SavePrompts(path string, prompts map[string]string) error {
	data, err := json.MarshalIndent(prompts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write prompts: %w", err)
	}
	return nil
}

// PromptNames returns the prompt names in stable order.
func PromptNames(prompts map[string]string) []string {
	names := make([]string, 0, len(prompts))
	for name := range prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
