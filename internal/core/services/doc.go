// Package services implements the driving ports: the extraction
// orchestrator that turns one metadata document into artifact files,
// and the batch runner that drives it over a stream of tokens.
package services
