package services

import (
	"strings"

	"golang.org/x/text/cases"
)

// ContentPolicy decides whether free-form user text is allowed. Injected so
// the word list and matching strategy can evolve without touching the
// orchestrator.
type ContentPolicy interface {
	IsAllowed(text string) bool
}

// BlocklistPolicy blocks text containing any listed word as a substring,
// matched case-insensitively via Unicode case folding. A cases.Caser is
// stateful, so one is built per call rather than shared.
type BlocklistPolicy struct {
	folded []string
}

// Default blocklist carried over from the launch word list. Korean entries
// are the ones the app actually sees in the wild.
var defaultBlockedWords = []string{
	"시발", "씨발", "병신", "존나", "지랄", "개새끼", "꺼져",
	"fuck", "shit", "bitch", "asshole",
}

func NewBlocklistPolicy(words []string) *BlocklistPolicy {
	caser := cases.Fold()
	folded := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		folded = append(folded, caser.String(w))
	}
	return &BlocklistPolicy{folded: folded}
}

func NewDefaultContentPolicy() *BlocklistPolicy {
	return NewBlocklistPolicy(defaultBlockedWords)
}

func (p *BlocklistPolicy) IsAllowed(text string) bool {
	if text == "" {
		return true
	}
	haystack := cases.Fold().String(text)
	for _, word := range p.folded {
		if strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}
