// Package transcript retrieves video transcripts from pluggable sources.
//
// A Source turns a video reference into ordered, timestamped segments.
// CaptionSource talks to a remote caption service over HTTP; SRTSource reads
// local SubRip files, which is convenient for tests and offline ingestion.
package transcript
