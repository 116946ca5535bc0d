// Package dedup collapses records that describe the same work across
// providers and ranks the survivors by provider trust.
package dedup

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"

	"github.com/helixir/paper-aggregator/internal/domain"
)

// DefaultSearchURLBase is the web search used to synthesize missing URLs.
const DefaultSearchURLBase = "https://scholar.google.com/scholar"

// NormalizeTitle returns the grouping key for a title: trimmed and lowercased.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// PaperUID derives the stable identifier for a record from its title, year
// and source. An unknown year (0) contributes an empty segment, so
// PaperUID("T", 0, s) hashes "T||<source>".
//
// The same paper reported by two providers gets two different uids.
func PaperUID(title string, year int, source domain.SourceType) string {
	yearPart := ""
	if year != 0 {
		yearPart = strconv.Itoa(year)
	}

	sum := sha1.Sum([]byte(title + "|" + yearPart + "|" + string(source)))
	return hex.EncodeToString(sum[:])
}

// SearchURL builds a web search link for title under base.
// Spaces in the title are encoded as '+'.
func SearchURL(base, title string) string {
	if base == "" {
		base = DefaultSearchURLBase
	}
	return base + "?q=" + url.QueryEscape(strings.TrimSpace(title))
}
