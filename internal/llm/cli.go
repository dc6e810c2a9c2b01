// ABOUTME: Enrichment backends that shell out to locally installed CLI tools
// ABOUTME: Prompts go through a temp file; stdout is parsed per tool
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Default models per CLI backend, fast and cheap
const (
	DefaultClaudeModel = "haiku"
	DefaultCodexModel  = "o3"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// writePromptFile writes the prompt to a temp file the CLI is told to read.
// Passing long prompts as argv breaks on OS arg limits and shell quoting.
func writePromptFile(prompt string) (string, error) {
	f, err := os.CreateTemp("", "lifelong-prompt-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create prompt file: %w", err)
	}
	if _, err := f.WriteString(prompt); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write prompt file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to close prompt file: %w", err)
	}
	return f.Name(), nil
}

func promptInstruction(path string) string {
	return fmt.Sprintf("Read the file %s and follow the instructions in it exactly. Return ONLY the requested output format, nothing else.", path)
}

// runCLI executes the command and returns stdout, with stderr folded into
// the error on failure
func runCLI(cmd *exec.Cmd) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 500 {
			detail = detail[:500]
		}
		return nil, fmt.Errorf("%s failed: %w: %s", cmd.Args[0], err, detail)
	}
	return stdout.Bytes(), nil
}

func onPath(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// ClaudeBackend calls the Claude Code CLI in print mode
type ClaudeBackend struct {
	model string
}

// NewClaudeBackend creates a Claude CLI backend; empty model means the default
func NewClaudeBackend(model string) *ClaudeBackend {
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeBackend{model: model}
}

func (b *ClaudeBackend) Name() string { return "claude" }

func (b *ClaudeBackend) Available() bool { return onPath("claude") }

func (b *ClaudeBackend) Enrich(ctx context.Context, prompt string) (string, error) {
	promptFile, err := writePromptFile(prompt)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(promptFile) }()

	cmd := exec.CommandContext(ctx, "claude",
		"--print", "--model", b.model,
		"--output-format", "stream-json", "--verbose",
		"--dangerously-skip-permissions",
		promptInstruction(promptFile))
	// The claude CLI refuses to run nested inside another claude session
	cmd.Env = envWithout("CLAUDECODE")

	out, err := runCLI(cmd)
	if err != nil {
		return "", err
	}
	text := parseClaudeStream(out)
	if text == "" {
		return "", fmt.Errorf("claude returned no output")
	}
	return text, nil
}

// parseClaudeStream extracts the result from stream-json stdout: the final
// result event wins, assistant text blocks are the fallback
func parseClaudeStream(out []byte) string {
	var result string
	var assistantTexts []string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var event struct {
			Type    string `json:"type"`
			Result  string `json:"result"`
			Message struct {
				Content []struct {
					Type string `json:"type"`
					Text string `json:"text"`
				} `json:"content"`
			} `json:"message"`
		}
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		switch event.Type {
		case "result":
			result = event.Result
		case "assistant":
			for _, block := range event.Message.Content {
				if block.Type == "text" && block.Text != "" {
					assistantTexts = append(assistantTexts, block.Text)
				}
			}
		}
	}

	if result != "" {
		return result
	}
	return strings.Join(assistantTexts, "\n")
}

func envWithout(key string) []string {
	prefix := key + "="
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		env = append(env, kv)
	}
	return env
}

// CodexBackend calls the Codex CLI in exec mode
type CodexBackend struct {
	model string
}

// NewCodexBackend creates a Codex CLI backend; empty model means the default
func NewCodexBackend(model string) *CodexBackend {
	if model == "" {
		model = DefaultCodexModel
	}
	return &CodexBackend{model: model}
}

func (b *CodexBackend) Name() string { return "codex" }

func (b *CodexBackend) Available() bool { return onPath("codex") }

func (b *CodexBackend) Enrich(ctx context.Context, prompt string) (string, error) {
	promptFile, err := writePromptFile(prompt)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(promptFile) }()

	cmd := exec.CommandContext(ctx, "codex",
		"exec", "--skip-git-repo-check", "--json", "--full-auto",
		"-m", b.model,
		promptInstruction(promptFile))

	out, err := runCLI(cmd)
	if err != nil {
		return "", err
	}
	text := parseCodexStream(out)
	if text == "" {
		return "", fmt.Errorf("codex returned no output")
	}
	return text, nil
}

// parseCodexStream extracts assistant text from codex exec --json stdout.
// Unparseable output is returned as-is rather than discarded.
func parseCodexStream(out []byte) string {
	var texts []string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var event struct {
			Type    string          `json:"type"`
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
			Text    string          `json:"text"`
			Result  string          `json:"result"`
		}
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		switch event.Type {
		case "message":
			if event.Role != "assistant" {
				continue
			}
			if t := rawContentText(event.Content); t != "" {
				texts = append(texts, t)
			}
		case "output", "result":
			switch {
			case event.Text != "":
				texts = append(texts, event.Text)
			case event.Result != "":
				texts = append(texts, event.Result)
			}
		}
	}

	if len(texts) > 0 {
		return strings.Join(texts, "\n")
	}
	return strings.TrimSpace(string(out))
}

// rawContentText flattens a content field that is either a plain string or
// a list of text blocks
func rawContentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// GeminiBackend calls the Gemini CLI in one-shot prompt mode
type GeminiBackend struct {
	model string
}

// NewGeminiBackend creates a Gemini CLI backend; empty model means the default
func NewGeminiBackend(model string) *GeminiBackend {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiBackend{model: model}
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) Available() bool { return onPath("gemini") }

func (b *GeminiBackend) Enrich(ctx context.Context, prompt string) (string, error) {
	promptFile, err := writePromptFile(prompt)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(promptFile) }()

	cmd := exec.CommandContext(ctx, "gemini",
		"--prompt", promptInstruction(promptFile),
		"--model", b.model,
		"--output-format", "text")

	out, err := runCLI(cmd)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("gemini returned no output")
	}
	return text, nil
}
