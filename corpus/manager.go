package corpus

import (
	"context"
	"log/slog"

	"github.com/poiesic/luminote/core"
	"github.com/poiesic/luminote/storage"
)

// displayNamePrefix scopes corpora to users. Each user owns exactly one
// corpus, looked up by display name.
const displayNamePrefix = "user-"

// DisplayName returns the display name of a user's corpus.
func DisplayName(userID string) string {
	return displayNamePrefix + userID
}

// Manager resolves users to their corpora and resets corpus contents
// between ingestions.
type Manager struct {
	store  storage.CorpusStore
	logger *slog.Logger
}

// NewManager creates a corpus manager backed by the given store.
func NewManager(store storage.CorpusStore) *Manager {
	return &Manager{
		store:  store,
		logger: slog.Default().With("component", "corpus-manager"),
	}
}

// GetOrCreate returns the user's corpus, creating it on first use.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) (*core.Corpus, error) {
	if err := core.ValidateUserId(userID); err != nil {
		return nil, err
	}

	displayName := DisplayName(userID)

	corpora, err := m.store.ListCorpora(ctx)
	if err != nil {
		return nil, err
	}
	for _, corpus := range corpora {
		if corpus.DisplayName == displayName {
			return corpus, nil
		}
	}

	m.logger.Info("creating corpus", "user", userID)
	return m.store.CreateCorpus(ctx, displayName)
}

// Purge removes every document from the corpus, leaving the corpus itself
// in place. Purging an already-empty corpus is a no-op. Individual document
// deletions that fail are logged and skipped so one stuck document does not
// block a refresh.
func (m *Manager) Purge(ctx context.Context, corpusName string) error {
	documents, err := m.store.ListDocuments(ctx, corpusName)
	if err != nil {
		return err
	}

	for _, document := range documents {
		if err := m.store.DeleteDocument(ctx, corpusName, document.Id); err != nil {
			m.logger.Warn("failed to delete document during purge",
				"corpus", corpusName, "document", document.Id, "error", err)
		}
	}

	if len(documents) > 0 {
		m.logger.Info("purged corpus", "corpus", corpusName, "documents", len(documents))
	}
	return nil
}
