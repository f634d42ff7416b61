package domain

// Role identifies what an artifact represents within one extraction.
type Role string

// Artifact roles.
const (
	// RolePrimary is the full-fidelity media file.
	RolePrimary Role = "primary"

	// RoleThumbnail is the lower-resolution preview.
	RoleThumbnail Role = "thumbnail"

	// RoleMetadata is the simplified metadata projection.
	RoleMetadata Role = "metadata"

	// RoleTokenMetadata is the full provider response.
	RoleTokenMetadata Role = "token-metadata"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RolePrimary, RoleThumbnail, RoleMetadata, RoleTokenMetadata:
		return true
	default:
		return false
	}
}

// MediaCandidate is a media location extracted from a metadata document
// before extension resolution.
type MediaCandidate struct {
	// URL is the raw media location.
	URL string

	// GatewayURL is the CDN-fronted location for the same content,
	// when the provider supplies one. Preferred over URL.
	GatewayURL string

	// MIMEHint is the provider-supplied content type. Often absent
	// or wrong; used only when the URL carries no extension.
	MIMEHint string
}

// Location returns the URL to download: the gateway URL when present,
// otherwise the raw URL. Gateway URLs have materially higher
// availability than raw IPFS URLs.
func (c MediaCandidate) Location() string {
	if c.GatewayURL != "" {
		return c.GatewayURL
	}
	return c.URL
}

// ResolvedMedia is a media candidate after extension resolution,
// ready to be written.
type ResolvedMedia struct {
	URL       string
	Extension string
	Role      Role
}

// Artifact records one file produced (or attempted) for a token.
type Artifact struct {
	// Path is the destination path relative to the output root.
	Path string

	// Role identifies what the artifact represents.
	Role Role

	// ByteSize is the size written, or the existing size when the
	// write was skipped.
	ByteSize int64

	// Skipped is true when the destination already existed and no
	// bytes were fetched.
	Skipped bool

	// Err holds the failure for this role, nil on success. A failed
	// role never aborts the other roles of the same token.
	Err error
}

// Failed reports whether this artifact's write failed.
func (a Artifact) Failed() bool {
	return a.Err != nil
}

// Manifest is the ordered record of artifacts attempted for one token.
type Manifest struct {
	Token     TokenRef
	BaseName  string
	Artifacts []Artifact
}

// Add appends an artifact entry.
func (m *Manifest) Add(a Artifact) {
	m.Artifacts = append(m.Artifacts, a)
}

// FailureCount returns the number of failed artifacts.
func (m *Manifest) FailureCount() int {
	count := 0
	for _, a := range m.Artifacts {
		if a.Failed() {
			count++
		}
	}
	return count
}

// ByRole returns the artifact for a role, or nil if that role was
// never attempted.
func (m *Manifest) ByRole(role Role) *Artifact {
	for i := range m.Artifacts {
		if m.Artifacts[i].Role == role {
			return &m.Artifacts[i]
		}
	}
	return nil
}
