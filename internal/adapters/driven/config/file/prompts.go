package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves prompt templates from user-editable files, falling
// back to the embedded defaults.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts seed the prompt directory.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswerSystem: `You are an assistant helping a student present an academic paper at a seminar.
Answer ONLY from the evidence from the papers provided by the user. Each evidence line starts with [E<n>] [<source> | page <page>].

Fill the structured answer as follows:
- bullets: 3 to 5 key points ready to put on a slide. Short, clear sentences focused on method, contribution, numbers and results. Set source and page from the evidence line each bullet is based on.
- script: a spoken-style presenter script walking through the bullets in order. Explain why each point matters and introduce difficult terms simply. End key sentences with a citation in the form [source | page].
- evidence: sentences copied verbatim from the evidence text. Never translate, summarise, paraphrase or rewrite them. A long sentence may be shortened to a contiguous excerpt.

Rules:
- Do not guess.
- Where the evidence is too thin to support a point, write "insufficient evidence" for that part.`,

	driven.PromptFreeTextSystem: `You are an assistant helping a student present an academic paper at a seminar.
Answer ONLY from the evidence from the papers provided by the user. Each evidence line starts with [E<n>] [<source> | page <page>].

Your output must contain all of the following sections.

[PPT]
- 3 to 5 key bullets ready to put on a slide, each ending with its citation in brackets: [source | page]
- Short, clear sentences
- Focus on method, contribution, numbers and results

[SCRIPT]
- A presenter script explaining the [PPT] bullets in order
- Natural, spoken style
- Explain why each point matters and what it means
- Introduce difficult terms simply first
- End paragraphs or key sentences with a citation in brackets: [source | page]

[EVIDENCE]
- Sentences copied verbatim from the evidence text, in their original language
- Never translate, summarise, paraphrase or rewrite them
- A long sentence may be shortened to a contiguous excerpt

Rules:
- Do not guess.
- Where the evidence is too thin to support a point, write "insufficient evidence" for that part.`,

	driven.PromptAnswerUser: `Question: %s

Evidence from the papers:
%s`,
}

// NewPromptStore returns a store reading from promptDir, or
// ~/.paperqa/prompts when promptDir is empty. Nothing is written until
// the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, DefaultDirName, "prompts")
	}
	return &PromptStore{promptDir: promptDir, cache: make(map[string]string)}, nil
}

// Load returns the named template. A user file wins over the embedded
// default; a missing or unreadable file falls back to the default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	if err != nil {
		if def, ok := defaultPrompts[name]; ok {
			return def, nil
		}
		if s.initErr != nil {
			return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise writes the default templates and README without touching
// files that already exist.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := make(map[string]string, len(defaultPrompts)+1)
	for name, content := range defaultPrompts {
		files[name+".txt"] = content
	}
	files["README.md"] = promptReadme

	for file, content := range files {
		path := filepath.Join(s.promptDir, file)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.initErr = fmt.Errorf("create %s: %w", file, err)
			return
		}
	}
}

func (s *PromptStore) read(name string) (string, error) {
	if s.initErr != nil {
		return "", s.initErr
	}
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

const promptReadme = `# paperqa prompts

Templates used to answer questions about your papers.

- answer_system.txt: system prompt for structured answers (bullets, script, evidence)
- freetext_system.txt: system prompt for free-text answers with [PPT]/[SCRIPT]/[EVIDENCE] sections
- answer_user.txt: user message carrying the question and the evidence

Edits take effect on the next command, or after restarting the TUI.

answer_user.txt takes two %s placeholders: the question first, then the
evidence block. Keep both, in that order.
`
