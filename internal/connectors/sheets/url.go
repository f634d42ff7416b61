package sheets

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	gidPattern           = regexp.MustCompile(`gid=(\d+)`)
)

// SpreadsheetRef identifies one sheet within a spreadsheet.
type SpreadsheetRef struct {
	// ID is the spreadsheet document id.
	ID string

	// GID is the sheet (tab) id within the document. "0" is the
	// first sheet.
	GID string
}

// ParseSpreadsheetURL extracts the spreadsheet id and sheet gid from a
// Google Sheets URL. The gid may appear as a query parameter or in the
// URL fragment; it defaults to "0" (the first sheet).
func ParseSpreadsheetURL(raw string) (SpreadsheetRef, error) {
	m := spreadsheetIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return SpreadsheetRef{}, fmt.Errorf("%w: no spreadsheet id in %q", domain.ErrInvalidInput, raw)
	}
	ref := SpreadsheetRef{ID: m[1], GID: "0"}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ref, nil
	}
	if gid := parsed.Query().Get("gid"); gid != "" {
		ref.GID = gid
	}
	if fm := gidPattern.FindStringSubmatch(parsed.Fragment); fm != nil {
		ref.GID = fm[1]
	}
	return ref, nil
}

// CSVExportURL returns the public CSV export endpoint for the sheet.
// Works without credentials for link-shared spreadsheets.
func (r SpreadsheetRef) CSVExportURL() string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", r.ID, r.GID)
}
