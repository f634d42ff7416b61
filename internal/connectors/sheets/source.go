package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driven"
	"github.com/steve-blackdove/nft-extractor/internal/logger"
)

// DefaultTimeout bounds the spreadsheet fetch.
const DefaultTimeout = 30 * time.Second

// Ensure Source implements the batch source port.
var _ driven.BatchSource = (*Source)(nil)

// Config configures a spreadsheet batch source.
type Config struct {
	// URL is the Google Sheets URL as copied from the browser.
	URL string

	// APIKey is a Google API key. When set, values are read through
	// the Sheets API; when empty, the public CSV export endpoint is
	// used, which requires the sheet to be link-shared.
	APIKey string

	// StartRow is the first row to process, 1-indexed. Zero means
	// row 1.
	StartRow int

	// Count caps how many valid token references are emitted.
	// Zero means all.
	Count int

	// ExportBaseURL overrides the CSV export host. Testing only.
	ExportBaseURL string
}

// Source streams token references parsed from spreadsheet rows.
// Rows are scanned cell by cell for the first parseable reference;
// rows without one are reported on the error channel and skipped.
type Source struct {
	cfg  Config
	http *http.Client
}

// New creates a spreadsheet batch source.
func New(cfg Config) *Source {
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}
	return &Source{
		cfg:  cfg,
		http: &http.Client{Timeout: DefaultTimeout},
	}
}

// Tokens fetches the spreadsheet and streams parsed references.
func (s *Source) Tokens(ctx context.Context) (<-chan domain.TokenRef, <-chan error) {
	refs := make(chan domain.TokenRef)
	errs := make(chan error, 1)

	go func() {
		defer close(refs)
		defer close(errs)

		rows, err := s.rows(ctx)
		if err != nil {
			errs <- err
			return
		}
		logger.Info("Found %d total rows in spreadsheet", len(rows))

		emitted := 0
		for i := s.cfg.StartRow - 1; i >= 0 && i < len(rows); i++ {
			if s.cfg.Count > 0 && emitted >= s.cfg.Count {
				return
			}

			ref, ok := scanRow(rows[i])
			if !ok {
				select {
				case errs <- fmt.Errorf("row %d: %w", i+1, domain.ErrUnsupportedReference):
				case <-ctx.Done():
					return
				}
				continue
			}

			select {
			case refs <- ref:
				emitted++
			case <-ctx.Done():
				return
			}
		}
	}()

	return refs, errs
}

// rows fetches all cell values, via the Sheets API or the CSV export.
func (s *Source) rows(ctx context.Context) ([][]string, error) {
	ref, err := ParseSpreadsheetURL(s.cfg.URL)
	if err != nil {
		return nil, err
	}
	if s.cfg.APIKey != "" {
		return s.rowsFromAPI(ctx, ref)
	}
	return s.rowsFromCSV(ctx, ref)
}

// rowsFromAPI reads values through the Sheets API. The gid is mapped
// onto a sheet title first, since the values endpoint addresses sheets
// by name.
func (s *Source) rowsFromAPI(ctx context.Context, ref SpreadsheetRef) ([][]string, error) {
	svc, err := sheets.NewService(ctx, option.WithAPIKey(s.cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	meta, err := svc.Spreadsheets.Get(ref.ID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}

	gid, _ := strconv.ParseInt(ref.GID, 10, 64)
	title := ""
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.SheetId == gid {
			title = sheet.Properties.Title
			break
		}
	}
	if title == "" {
		return nil, fmt.Errorf("%w: no sheet with gid %s", domain.ErrNotFound, ref.GID)
	}

	resp, err := svc.Spreadsheets.Values.Get(ref.ID, "'"+title+"'").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get values: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// rowsFromCSV reads the public CSV export endpoint.
func (s *Source) rowsFromCSV(ctx context.Context, ref SpreadsheetRef) ([][]string, error) {
	endpoint := ref.CSVExportURL()
	if s.cfg.ExportBaseURL != "" {
		endpoint = s.cfg.ExportBaseURL + "/export?format=csv&gid=" + ref.GID
	}
	logger.Info("Fetching data from: %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch CSV: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: CSV export status %d", domain.ErrUpstream, resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// scanRow finds the first parseable token reference in a row.
// Empty rows and rows of unparseable cells yield ok=false.
func scanRow(row []string) (domain.TokenRef, bool) {
	for _, cell := range row {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		if ref, err := domain.ParseTokenRef(cell); err == nil {
			return ref, true
		}
	}
	return domain.TokenRef{}, false
}
