// Package query answers questions about ingested video transcripts.
//
// The Engine retrieves relevant transcript passages from the user's corpus,
// folds in stored user preferences, and asks the generator for a JSON
// {"answer", "timestamp"} object. Model output is decoded by a layered
// parser that never fails: malformed JSON degrades to field salvage, then
// to passing the raw text through with a zero timestamp.
package query
