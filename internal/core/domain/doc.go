// Package domain defines the core business entities for the NFT extractor.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TokenRef: A contract address + token id pair
//   - MetadataDocument: The provider-shaped metadata tree
//   - MediaCandidate / ResolvedMedia: Media selection inputs and outputs
//   - Artifact / Manifest: The per-token record of written files
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
