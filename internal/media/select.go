package media

import (
	"strings"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
)

// DuplicatePolicy controls how a thumbnail URL is compared against the
// primary URL when deciding whether both point at the same content.
// The comparison is a heuristic inherited from observed provider
// behaviour, not a protocol guarantee, so it is configurable.
type DuplicatePolicy string

// Available duplicate policies.
const (
	// DuplicateExact drops the thumbnail only when both URLs are equal.
	// Strictest; never false-positives, misses gateway/raw mirror pairs.
	DuplicateExact DuplicatePolicy = "exact"

	// DuplicateContains drops the thumbnail when either URL contains the
	// other as a substring. Matches the historical behaviour; can
	// false-positive on coincidentally overlapping content hashes.
	DuplicateContains DuplicatePolicy = "contains"

	// DuplicateHostStripped compares URLs after removing the scheme,
	// gateway host and /ipfs/ path prefix, so the same content hash
	// behind different gateways still matches.
	DuplicateHostStripped DuplicatePolicy = "host-stripped"
)

// IsValid returns true if the policy is recognised.
func (p DuplicatePolicy) IsValid() bool {
	switch p {
	case DuplicateExact, DuplicateContains, DuplicateHostStripped:
		return true
	default:
		return false
	}
}

// SelectOptions configures media selection for one document.
type SelectOptions struct {
	// DownloadThumbnails enables the thumbnail role. When false no
	// thumbnail candidate is ever returned.
	DownloadThumbnails bool

	// Policy is the duplicate comparison rule. Zero value falls back
	// to DuplicateContains.
	Policy DuplicatePolicy
}

// Selection holds the media candidates chosen from one document.
// Either role may be nil; absence is valid, never an error.
type Selection struct {
	Primary   *domain.MediaCandidate
	Thumbnail *domain.MediaCandidate
}

// Select ranks and picks the primary and thumbnail media candidates
// from a metadata document. Selection is deterministic: it depends only
// on the document and options.
//
// The primary candidate comes from metadata.media.uri, the nested
// full-resolution location some minting pipelines populate. The
// thumbnail candidate is the first element of the top-level media
// array, preferring its gateway URL over the raw one. A thumbnail that
// resolves to the same content as the primary is dropped so the two
// roles never duplicate one file under different extensions.
func Select(doc domain.MetadataDocument, opts SelectOptions) Selection {
	var sel Selection

	if nested := doc.GetMap("metadata", "media"); nested != nil {
		if uri, _ := nested["uri"].(string); uri != "" {
			mime, _ := nested["mimeType"].(string)
			sel.Primary = &domain.MediaCandidate{URL: uri, MIMEHint: mime}
		}
	}

	if !opts.DownloadThumbnails {
		return sel
	}

	items := doc.GetSlice("media")
	if len(items) == 0 {
		return sel
	}
	item, ok := items[0].(map[string]any)
	if !ok {
		return sel
	}

	raw, _ := item["raw"].(string)
	gateway, _ := item["gateway"].(string)
	format, _ := item["format"].(string)
	if raw == "" && gateway == "" {
		return sel
	}

	thumb := &domain.MediaCandidate{URL: raw, GatewayURL: gateway, MIMEHint: format}
	if sel.Primary != nil && isDuplicate(sel.Primary.URL, thumb.Location(), opts.Policy) {
		return sel
	}
	sel.Thumbnail = thumb
	return sel
}

// isDuplicate applies the configured policy to a primary/thumbnail URL
// pair. Empty URLs never match.
func isDuplicate(primary, thumbnail string, policy DuplicatePolicy) bool {
	if primary == "" || thumbnail == "" {
		return false
	}

	switch policy {
	case DuplicateExact:
		return primary == thumbnail
	case DuplicateHostStripped:
		return containsEither(stripGateway(primary), stripGateway(thumbnail))
	default:
		return containsEither(primary, thumbnail)
	}
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// stripGateway reduces a URL to its content path: scheme and host are
// removed, along with the conventional /ipfs/ prefix used by public
// gateways. "https://ipfs.io/ipfs/Qm123" and "ipfs://Qm123" both
// reduce to "Qm123".
func stripGateway(url string) string {
	if rest, ok := strings.CutPrefix(url, "ipfs://"); ok {
		return strings.TrimPrefix(rest, "ipfs/")
	}
	if _, rest, ok := strings.Cut(url, "://"); ok {
		if _, path, found := strings.Cut(rest, "/"); found {
			return strings.TrimPrefix(path, "ipfs/")
		}
		return rest
	}
	return url
}
