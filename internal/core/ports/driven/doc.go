// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Collaborators
//
//   - Extractor: Turns one file into page records (PDF, plain text, Markdown)
//   - PostProcessor: Splits records into chunks (the recursive chunker)
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndexBuilder / VectorIndex: Builds and searches the in-memory index
//   - LLMService: Free-text and schema-constrained generation
//   - AIServiceFactory: Creates embedding and LLM services from settings
//   - ConfigStore: Persisted configuration file
//   - Environment: Process environment, after .env loading
//   - PromptStore: User-editable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
