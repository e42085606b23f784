// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Full-text read and atomic write of markdown documents
//   - SidecarStore: Wholesale read and write of suggestion files
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ArtifactStore: Derived view persistence. Without it, views are not written.
//   - ViewPipeline: Derived view generation. Without it, views are not regenerated.
//   - DecisionStore: Decision history. Without it, decisions are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or generator package
package driven
