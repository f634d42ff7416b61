// Package media implements the media-resolution core: deciding which
// URLs in a provider metadata document are worth downloading, what file
// extension each should carry, and what base name the resulting files
// share. All functions here are pure; network and filesystem effects
// live in internal/artifact.
package media
