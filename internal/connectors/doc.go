// Package connectors groups the implementations that talk to the
// outside world. Each subpackage knows how to reach one upstream:
// the Alchemy NFT API for metadata, Google Sheets for batch input,
// and a watched drop directory for queued token lists.
package connectors
