package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TokenRef identifies a single token on a contract.
// It is the unit of work for one extraction.
type TokenRef struct {
	// ContractAddress is the 0x-prefixed contract address.
	ContractAddress string

	// TokenID is the decimal token id.
	TokenID string
}

// String returns the canonical "contract/id" form.
func (t TokenRef) String() string {
	return t.ContractAddress + "/" + t.TokenID
}

// IsZero reports whether the reference is empty.
func (t TokenRef) IsZero() bool {
	return t.ContractAddress == "" && t.TokenID == ""
}

// Marketplace listing URL patterns. Each yields (contract, token id).
var (
	openseaPattern = regexp.MustCompile(`/assets/(?:ethereum|eth)/([0-9a-fA-Fx]+)/(\d+)`)
	rariblePattern = regexp.MustCompile(`/token/([0-9a-fA-Fx]+):(\d+)`)
	directPattern  = regexp.MustCompile(`(0x[0-9a-fA-F]{40})[/:]+(\d+)`)
	addressPattern = regexp.MustCompile(`^(0x[0-9a-fA-F]{40})$`)
	numberPattern  = regexp.MustCompile(`^(\d+)`)
)

// ParseTokenRef extracts a token reference from a marketplace URL or a
// direct "contract/id" string. Recognised formats:
//
//   - OpenSea: https://opensea.io/assets/ethereum/0xCONTRACT/TOKEN
//   - Rarible: https://rarible.com/token/0xCONTRACT:TOKEN
//   - Direct:  0xCONTRACT/TOKEN, 0xCONTRACT:TOKEN, "0xCONTRACT TOKEN"
//
// Returns ErrUnsupportedReference when no pattern matches.
func ParseTokenRef(raw string) (TokenRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TokenRef{}, fmt.Errorf("%w: empty reference", ErrUnsupportedReference)
	}

	for _, re := range []*regexp.Regexp{openseaPattern, rariblePattern, directPattern} {
		if m := re.FindStringSubmatch(raw); m != nil {
			return TokenRef{ContractAddress: m[1], TokenID: m[2]}, nil
		}
	}

	// Contract and token separated by whitespace or a comma.
	parts := regexp.MustCompile(`[,\s]+`).Split(raw, -1)
	if len(parts) >= 2 {
		addr := addressPattern.FindString(parts[0])
		id := numberPattern.FindString(parts[1])
		if addr != "" && id != "" {
			return TokenRef{ContractAddress: addr, TokenID: id}, nil
		}
	}

	return TokenRef{}, fmt.Errorf("%w: %q", ErrUnsupportedReference, raw)
}

// ParseTokenID converts a decimal or 0x-prefixed hex token id to its
// decimal form. Returns ErrInvalidInput for anything else.
func ParseTokenID(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: empty token id", ErrInvalidInput)
	}
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		n, err := strconv.ParseUint(value[2:], 16, 64)
		if err != nil {
			return "", fmt.Errorf("%w: token id %q", ErrInvalidInput, value)
		}
		return strconv.FormatUint(n, 10), nil
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return "", fmt.Errorf("%w: token id %q", ErrInvalidInput, value)
	}
	return value, nil
}

// TokenRange expands a contiguous token id range on one contract into
// individual references. Both bounds are inclusive.
func TokenRange(contractAddress string, first, last uint64) []TokenRef {
	if last < first {
		first, last = last, first
	}
	refs := make([]TokenRef, 0, last-first+1)
	for id := first; id <= last; id++ {
		refs = append(refs, TokenRef{
			ContractAddress: contractAddress,
			TokenID:         strconv.FormatUint(id, 10),
		})
	}
	return refs
}
