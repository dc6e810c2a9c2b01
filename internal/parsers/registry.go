// ABOUTME: Source registry mapping source tags to parsers and transcript roots
// ABOUTME: Adding a source means adding a registry entry, not new branching
package parsers

// SourceSpec binds one source tag to its parser and transcript roots
type SourceSpec struct {
	Tag    string
	Parser Parser
	Paths  []string
}

// Registry builds the active source list from configured roots, keyed by
// source tag (see config.SourcePaths). Unknown tags are ignored.
func Registry(paths map[string]string) []SourceSpec {
	var specs []SourceSpec
	for _, tag := range []string{"claude_code", "codex", "gemini"} {
		root, ok := paths[tag]
		if !ok {
			continue
		}
		specs = append(specs, SourceSpec{
			Tag:    tag,
			Parser: forTag(tag),
			Paths:  []string{root},
		})
	}
	return specs
}

func forTag(tag string) Parser {
	switch tag {
	case "claude_code":
		return NewClaudeCodeParser()
	case "codex":
		return NewCodexParser()
	case "gemini":
		return NewGeminiParser()
	}
	return nil
}
