package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ManagerConfig struct {
	Timeout       int
	MaxInputChars int
}

// Manager owns the prompt templates and the per-call timeout. The
// answer prompt instructs the model to mark sources as [Source N];
// the citation extractor parses exactly that form, so the two must
// move together.
type Manager struct {
	generator IGenerator
	cfg       ManagerConfig
}

func NewManager(generator IGenerator, cfg ManagerConfig) *Manager {
	return &Manager{generator: generator, cfg: cfg}
}

const answerPrompt = `You are a research assistant analyzing a collection of academic papers, video transcripts and podcast episodes.

Context from retrieved sources:
%s

Previous conversation:
%s

Question: %s

Instructions:
1. Provide a comprehensive answer based only on the context above.
2. Mark every statement taken from a source with that source's marker, e.g. [Source 2]. Use only markers that appear in the context.
3. Mention when information comes from a video or podcast transcript.
4. If the context does not cover the question, say so plainly instead of guessing.

Answer:`

func (m *Manager) Answer(ctx context.Context, contextBlock, history, question string) (string, error) {
	if m.generator == nil {
		return "", fmt.Errorf("generator not configured")
	}
	if history == "" {
		history = "(none)"
	}
	prompt := fmt.Sprintf(answerPrompt, contextBlock, history, question)
	return m.generateText(ctx, prompt)
}

const relatedPrompt = `Based on this research query: "%s"
And this answer: "%s"

Generate up to %d related research questions that would deepen understanding of the topic.
Return a JSON array of strings only. No extra text.`

func (m *Manager) RelatedQueries(ctx context.Context, query, answer string, max int) ([]string, error) {
	if m.generator == nil {
		return nil, fmt.Errorf("generator not configured")
	}
	if max <= 0 {
		max = 3
	}
	if len(answer) > 500 {
		answer = answer[:500]
	}
	prompt := fmt.Sprintf(relatedPrompt, query, answer, max)
	result, err := m.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseQueryList(result, max)
}

func (m *Manager) generateText(ctx context.Context, prompt string) (string, error) {
	if m.cfg.MaxInputChars > 0 && len(prompt) > m.cfg.MaxInputChars {
		prompt = prompt[:m.cfg.MaxInputChars]
	}
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := m.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

func (m *Manager) MaxInputChars() int {
	return m.cfg.MaxInputChars
}

// parseQueryList tolerates fenced or prefixed model output around the
// JSON array.
func parseQueryList(output string, max int) ([]string, error) {
	clean := strings.TrimSpace(output)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	start := strings.Index(clean, "[")
	end := strings.LastIndex(clean, "]")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var queries []string
	if err := json.Unmarshal([]byte(clean), &queries); err != nil {
		return nil, fmt.Errorf("parse related queries: %w", err)
	}
	uniq := make([]string, 0, len(queries))
	seen := make(map[string]bool)
	for _, q := range queries {
		normalized := strings.TrimSpace(q)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, normalized)
		if len(uniq) >= max {
			break
		}
	}
	if len(uniq) == 0 {
		return nil, fmt.Errorf("no related queries found")
	}
	return uniq, nil
}
