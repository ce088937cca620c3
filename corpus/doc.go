// Package corpus maps users to their transcript corpora.
//
// Every user owns exactly one corpus, identified by the display name
// "user-<id>". The Manager creates the corpus lazily on first use and can
// purge its documents before a fresh ingestion.
package corpus
