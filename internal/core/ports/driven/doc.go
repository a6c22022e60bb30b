// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for search to function:
//
//   - FragmentStore: Similarity search, forward lookup and roster queries
//   - EmbeddingService: Turns the query into a vector
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - QueryAnalyzer: Intent analysis. Without it every query is "general" and unfiltered.
//   - Reranker: Cross-encoder scoring. Without it the heuristic order is final.
//   - WebSearch: External search for hybrid retrieval.
//   - EmbeddingCache: Reuses query vectors across runs.
//   - FragmentWriter: Bulk seeding of companies, reports and fragments.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
