package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlocklistPolicy(t *testing.T) {
	policy := NewDefaultContentPolicy()

	assert.True(t, policy.IsAllowed(""))
	assert.True(t, policy.IsAllowed("오늘도 달리기 완료!"))
	assert.True(t, policy.IsAllowed("great run with friends"))

	assert.False(t, policy.IsAllowed("존나 좋다"))
	assert.False(t, policy.IsAllowed("시발 힘들다"))
	assert.False(t, policy.IsAllowed("what the fuck"))
	// Substring and case-insensitive matching.
	assert.False(t, policy.IsAllowed("WHAT THE FUCKING DAY"))
	assert.False(t, policy.IsAllowed("sHiTty weather"))
}

func TestBlocklistPolicyCustomWords(t *testing.T) {
	policy := NewBlocklistPolicy([]string{"Straße", "  ", ""})

	assert.False(t, policy.IsAllowed("ich wohne in der straße"))
	assert.True(t, policy.IsAllowed("harmless text"))
}
