package memory

import (
	"sort"
	"strings"

	"github.com/sandevgo/venuebot/internal/core"
)

// rankByRelevance orders candidate records against a free-text hint. Scoring
// is deliberately simple: word overlap with the summary, a boost when the
// hint mentions the record's location or tags, recency as tiebreak.
func rankByRelevance(records []core.MemoryRecord, hint string) []core.MemoryRecord {
	hintWords := tokenize(hint)
	if len(hintWords) == 0 {
		return records
	}

	type scored struct {
		rec   core.MemoryRecord
		score float64
	}

	ranked := make([]scored, 0, len(records))
	for _, rec := range records {
		ranked = append(ranked, scored{rec: rec, score: score(rec, hintWords)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].rec.CreatedAt.After(ranked[j].rec.CreatedAt)
	})

	out := make([]core.MemoryRecord, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.rec)
	}
	return out
}

func score(rec core.MemoryRecord, hintWords map[string]bool) float64 {
	var s float64
	for word := range tokenize(rec.Summary) {
		if hintWords[word] {
			s += 1.0
		}
	}

	if rec.Location != "" {
		for _, part := range strings.Fields(strings.ToLower(rec.Location)) {
			if hintWords[strings.Trim(part, ",.")] {
				s += 2.0
			}
		}
	}

	for _, tag := range rec.Tags {
		if hintWords[strings.ToLower(tag)] {
			s += 1.5
		}
	}
	return s
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "me": true, "my": true,
	"is": true, "are": true, "was": true, "to": true, "for": true, "in": true,
	"on": true, "at": true, "and": true, "or": true, "of": true, "it": true,
	"you": true, "we": true, "some": true, "any": true, "near": true,
	"want": true, "like": true, "find": true, "looking": true, "please": true,
}

func tokenize(text string) map[string]bool {
	words := make(map[string]bool)
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(raw, ".,!?;:'\"()")
		if len(word) < 2 || stopwords[word] {
			continue
		}
		words[word] = true
	}
	return words
}
