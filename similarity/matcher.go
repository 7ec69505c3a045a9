package similarity

import (
	"context"
	"strings"

	"civicbot-be/models"

	"github.com/rs/zerolog"
)

const defaultScanLimit = 500

// recordSource is the slice of the record store the matcher needs.
type recordSource interface {
	Scan(ctx context.Context, limit int64) ([]models.Issue, error)
	ScanOpen(ctx context.Context, limit int64) ([]models.Issue, error)
}

// embedder probes an external embedding capability. Its result is advisory:
// a failure never affects matching.
type embedder interface {
	Embed(ctx context.Context, text string) error
}

// Matcher is the duplicate/similarity checker. Matching is a deterministic
// keyword heuristic; the embedder hook is where a vector search would plug in.
type Matcher struct {
	records   recordSource
	embed     embedder
	scanLimit int64
	log       zerolog.Logger
}

// NewMatcher builds a matcher. embed may be nil.
func NewMatcher(records recordSource, embed embedder, log zerolog.Logger) *Matcher {
	return &Matcher{records: records, embed: embed, scanLimit: defaultScanLimit, log: log}
}

// FindSimilar searches open reports for a likely duplicate of a new report.
// A candidate matches when every token of the new description appears within
// the candidate's stored description and the stored location equals the new
// report's location case-insensitively. First match wins.
func (m *Matcher) FindSimilar(ctx context.Context, description, location string) (*models.Issue, error) {
	if m.embed != nil {
		if err := m.embed.Embed(ctx, description); err != nil {
			m.log.Debug().Err(err).Msg("embedding probe failed, keyword match only")
		}
	}

	candidates, err := m.records.ScanOpen(ctx, m.scanLimit)
	if err != nil {
		return nil, err
	}

	tokens := tokenize(description)
	wantLocation := strings.TrimSpace(location)

	for i := range candidates {
		c := &candidates[i]
		if containsAll(normalize(c.IssueType), tokens) &&
			strings.EqualFold(strings.TrimSpace(c.Location), wantLocation) {
			return c, nil
		}
	}
	return nil, nil
}

// FindByKeywords is the forgotten-ID lookup: the first record whose issue text
// contains every word of the keyword and whose location contains the location
// phrase as a substring. No match is (nil, nil), not an error.
func (m *Matcher) FindByKeywords(ctx context.Context, keyword, location string) (*models.Issue, error) {
	candidates, err := m.records.Scan(ctx, m.scanLimit)
	if err != nil {
		return nil, err
	}

	words := tokenize(keyword)
	wantLocation := normalize(location)

	for i := range candidates {
		c := &candidates[i]
		if containsAll(normalize(c.IssueType), words) &&
			strings.Contains(normalize(c.Location), wantLocation) {
			return c, nil
		}
	}
	return nil, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func tokenize(s string) []string {
	return strings.Fields(normalize(s))
}

// containsAll reports whether every word appears within text.
func containsAll(text string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}
