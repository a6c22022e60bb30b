// Package services implements the driving port interfaces.
// Services contain the retrieval logic and orchestrate calls to
// driven ports (adapters):
//
//   - SearchService: analyze, resolve, vector search, table attachment,
//     rerank and provenance tagging for one query
//   - InternalRetriever and HybridRetriever: batch retrieval over the
//     fragment store, optionally merged with web search
//   - EntityResolver and CompanyService: company name resolution
//   - ReportService and IngestService: report context and bulk seeding
//   - SettingsService: configuration with environment overrides
//
// Services are pure Go with no CGO.
package services
