package ai

import (
	"fmt"
	"sync"
)

// The query embedder is a process-wide singleton: building a provider
// client is not free and every query needs the exact same model so
// stored and query vectors stay comparable. Initialization is lazy and
// happens at most once; a failed build sticks (no internal retry).
var (
	embedderMu      sync.Mutex
	embedderFactory func() (IEmbedder, error)
	embedderInst    IEmbedder
	embedderErr     error
	embedderBuilt   bool
)

// ConfigureEmbedder installs the factory used by GetOrCreateEmbedder.
// Call once at startup, before the first query.
func ConfigureEmbedder(factory func() (IEmbedder, error)) {
	embedderMu.Lock()
	defer embedderMu.Unlock()
	embedderFactory = factory
	embedderInst = nil
	embedderErr = nil
	embedderBuilt = false
}

// GetOrCreateEmbedder returns the shared embedder, building it on first
// use. If the build failed, every subsequent call returns that error.
func GetOrCreateEmbedder() (IEmbedder, error) {
	embedderMu.Lock()
	defer embedderMu.Unlock()
	if !embedderBuilt {
		if embedderFactory == nil {
			embedderErr = fmt.Errorf("embedder not configured: %w", ErrUnavailable)
		} else {
			embedderInst, embedderErr = embedderFactory()
		}
		embedderBuilt = true
	}
	return embedderInst, embedderErr
}

// SetEmbedderForTest replaces the singleton with a stub and returns a
// restore func.
func SetEmbedderForTest(e IEmbedder) func() {
	embedderMu.Lock()
	prevInst, prevErr, prevBuilt, prevFactory := embedderInst, embedderErr, embedderBuilt, embedderFactory
	embedderInst = e
	embedderErr = nil
	embedderBuilt = true
	embedderMu.Unlock()
	return func() {
		embedderMu.Lock()
		embedderInst, embedderErr, embedderBuilt, embedderFactory = prevInst, prevErr, prevBuilt, prevFactory
		embedderMu.Unlock()
	}
}
