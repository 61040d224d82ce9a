// Package domain defines the core entities of the paperqa pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: One extracted page (or file) with its provenance
//   - Chunk: A bounded window of a record, the unit of embedding and retrieval
//   - RetrievedChunk: A chunk returned for a question, with rank and score
//   - Answer: The grounded answer produced for one question
//   - AppSettings: Effective configuration for one session
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
