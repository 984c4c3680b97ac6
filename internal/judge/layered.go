package judge

import "dealdesk/internal/types"

// LayeredCache reads through a fast in-memory layer backed by a slower
// persistent layer. Hits from the persistent layer are promoted.
type LayeredCache struct {
	fast types.JudgmentCache
	slow types.JudgmentCache
}

// NewLayeredCache composes a memory cache over a persistent store.
func NewLayeredCache(fast, slow types.JudgmentCache) *LayeredCache {
	return &LayeredCache{fast: fast, slow: slow}
}

// Get implements types.JudgmentCache.
func (l *LayeredCache) Get(definitionID, submissionID string) (string, bool) {
	if raw, ok := l.fast.Get(definitionID, submissionID); ok {
		return raw, true
	}
	raw, ok := l.slow.Get(definitionID, submissionID)
	if ok {
		_ = l.fast.Put(definitionID, submissionID, raw)
	}
	return raw, ok
}

// Put implements types.JudgmentCache. The persistent write result wins;
// the memory layer never fails.
func (l *LayeredCache) Put(definitionID, submissionID, raw string) error {
	_ = l.fast.Put(definitionID, submissionID, raw)
	return l.slow.Put(definitionID, submissionID, raw)
}
