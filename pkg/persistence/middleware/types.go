package middleware

import "github.com/aretw0/weave/pkg/ports"

// Middleware allows wrapping a PromptStore to add behavior.
type Middleware func(ports.PromptStore) ports.PromptStore

// Chain applies middlewares so that the first one sees calls first.
func Chain(store ports.PromptStore, mws ...Middleware) ports.PromptStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
