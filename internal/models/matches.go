package models

import "github.com/google/uuid"

// MatchMethod identifies which matcher produced a candidate.
type MatchMethod string

// Match methods. A candidate produced by both matchers is merged into one
// hybrid record.
const (
	MatchMethodText   MatchMethod = "text"
	MatchMethodVisual MatchMethod = "visual"
	MatchMethodHybrid MatchMethod = "hybrid"
)

// MatchCandidate is one plausible (lost, found) pairing in a notification feed.
// Candidates are computed per request and never persisted. At most one
// candidate exists per (lost, found) pair in a single response.
type MatchCandidate struct {
	Type        string      `json:"type"`
	Method      MatchMethod `json:"match_method"`
	LostItem    *LostItem   `json:"lost_item"`
	FoundItem   *FoundItem  `json:"found_item"`
	Score       int         `json:"score"`
	VisualScore *float64    `json:"vector_score,omitempty"`
}

// PairKey returns the dedup key identifying the (lost, found) pair within a
// single matching run.
func (c *MatchCandidate) PairKey() string {
	return c.LostItem.ID.String() + "-" + c.FoundItem.ID.String()
}

// NeighborMatch is one nearest-neighbor hit from the vector index:
// an item id with its cosine similarity to the query embedding.
type NeighborMatch struct {
	ItemID     uuid.UUID
	Similarity float64
	Category   string
}
