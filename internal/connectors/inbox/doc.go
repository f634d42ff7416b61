// Package inbox implements a drop-directory batch source. Text files
// placed in a watched directory are scanned for token references, one
// per line, and renamed with a .done suffix once processed.
//
// # Architectural Position
//
// Connectors sit at the outer edge of the hexagon. This package
// implements the driven.BatchSource port and may import core domain
// types, but nothing from services or adapters.
package inbox
