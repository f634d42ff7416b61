// Package alchemy implements the metadata fetcher against the Alchemy
// NFT API. It owns authentication (API key), request rate limiting and
// error classification; the core sees only domain.MetadataDocument and
// domain error sentinels.
package alchemy
