// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ingest turns video transcripts into searchable corpus documents.
//
// The Pipeline runs a single-pass ingestion: fetch the transcript, format
// each segment with its timestamp, extract topic concepts batch by batch,
// and upload the formatted transcript into the user's corpus. Progress is
// reported on an unbuffered event channel that closes after exactly one
// terminal event. Events serialize to NDJSON for streaming consumers:
//
//	{"status":"progress","message":"Loading transcript...","progress":10}
//	{"status":"completed","message":"Video processed successfully","progress":100,"concepts":[...]}
//	{"status":"error","message":"Transcript not available: ..."}
//
// Concept extraction is best effort. A batch the generator cannot handle
// contributes no concepts but never fails the ingestion; only transcript
// and storage failures are terminal.
package ingest
