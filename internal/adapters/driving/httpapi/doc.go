// Package httpapi exposes a local HTTP trigger for range extraction.
// A GET request carrying a contract address and token id range kicks
// off a batch run and reports the summary as JSON.
package httpapi
