// Package reindex re-embeds stored transcript chunks with a new or updated
// embedding model.
//
// This package supports batch processing of chunk records, progress tracking,
// retry logic with exponential backoff, and vector normalization to ensure
// compatibility with cosine similarity search.
package reindex
