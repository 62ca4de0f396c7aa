package middleware

import "github.com/aretw0/vigil/pkg/ports"

// Middleware allows wrapping a VerdictStore to add behavior.
type Middleware func(ports.VerdictStore) ports.VerdictStore

// Chain wraps store with mws. The first middleware sees verdicts first on Save.
func Chain(store ports.VerdictStore, mws ...Middleware) ports.VerdictStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
