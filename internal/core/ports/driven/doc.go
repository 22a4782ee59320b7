// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PageSource: Fetches raw pages from the wiki
//   - SearchIndex: Submits index records to the search service
//   - FingerprintStore: Persistent change-detection cache
//   - PageConfigStore: Configured pages and spaces
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - LLMService: Document summarisation. Without it, summaries are omitted.
//   - EmbeddingService: Vector embeddings. Without it, vectors are omitted.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
