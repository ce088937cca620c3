// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Generator, ai.Embedder,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic
// behavior.
//
// # Usage in Tests
//
//	// Scripted model output
//	gen := mock.NewMockGenerator().Enqueue(`{"answer":"yes","timestamp":"00:01:00"}`)
//	provider := mock.NewMockProviderWithServices(gen, mock.NewMockEmbedder())
//
//	// Custom behavior injection
//	gen.GenerateFunc = func(ctx context.Context, system, user string) (string, error) {
//	    return "", errors.New("model unavailable")
//	}
//
//	// Check call counts
//	count := gen.CallCount()
//
// # Default Behavior
//
//   - MockGenerator: returns scripted responses in order, echoing the user
//     prompt when nothing is scripted
//   - MockEmbedder: returns deterministic vectors based on text hash
//   - MockProvider: aggregates mock generator and embedder
package mock
