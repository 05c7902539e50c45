package extract

import (
	"sort"
	"strings"

	"github.com/cyberpulse/backend/internal/catalog"
	"github.com/cyberpulse/backend/internal/textutil"
)

// Topic-id words too generic to count as a specific match on their own.
var genericTopicWords = map[string]struct{}{
	"attack":   {},
	"campaign": {},
	"outbreak": {},
	"group":    {},
}

// Synonyms that identify a threat type almost unambiguously.
var strongSynonyms = map[string]struct{}{
	"ransomware": {},
	"phishing":   {},
	"ddos":       {},
	"apt":        {},
}

// Extractor maps a free-text query to catalog topic ids by weighted
// keyword and synonym matching. It is pure: same query and catalog give
// the same result on every call, and absence of matches is an empty
// slice, never an error.
type Extractor struct {
	catalog *catalog.Catalog
}

// Match is a candidate topic with its accumulated confidence. The
// confidence is an unbounded ranking accumulator, not a probability.
type Match struct {
	TopicID    string
	Confidence int
}

func New(c *catalog.Catalog) *Extractor {
	return &Extractor{catalog: c}
}

// Extract returns up to five distinct topic ids relevant to the query,
// most confident first.
func (e *Extractor) Extract(query string) []string {
	return selectTopics(e.Matches(query))
}

// Matches scores every catalog topic against the query and returns the
// candidates with positive confidence, ranked descending. Ties keep the
// order in which topics first scored, which follows catalog order.
func (e *Extractor) Matches(query string) []Match {
	q := strings.ToLower(query)

	tokens := textutil.Tokens(q)
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	scores := make(map[string]int)
	var order []string
	add := func(id string, delta int) {
		if _, seen := scores[id]; !seen {
			order = append(order, id)
		}
		scores[id] += delta
	}

	for _, topic := range e.catalog.Topics() {
		score := scoreTopic(topic, q, tokenSet)
		if score > 0 {
			add(topic.ID, score)
		}
	}

	// Keyword boosts stack on top of the topic scores. Group order
	// matters: the conditional "attack" rule looks at the scores
	// accumulated up to the point it fires.
	for _, group := range e.catalog.Groups() {
		for _, kw := range group.Keywords {
			if !strings.Contains(q, kw) {
				continue
			}
			rule, ok := e.catalog.BoostFor(group.Name, kw)
			if !ok {
				continue
			}
			if rule.Conditional && anyScoreAbove(scores, 8) {
				continue
			}
			add(rule.TopicID, rule.Boost)
		}
	}

	ranked := make([]Match, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, Match{TopicID: id, Confidence: scores[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	return ranked
}

func scoreTopic(topic catalog.Topic, q string, tokenSet map[string]struct{}) int {
	score := 0

	words := strings.Fields(topic.ID)
	all, any := true, false
	for _, w := range words {
		if wordPrefixMatch(q, w) {
			any = true
		} else {
			all = false
		}
	}

	switch {
	case all && len(words) > 0:
		score += 15
	case any:
		specific := false
		for _, w := range words {
			if _, generic := genericTopicWords[w]; generic {
				continue
			}
			if wordPrefixMatch(q, w) {
				specific = true
				break
			}
		}
		if specific {
			score += 8
		} else {
			score += 2
		}
	}

	for _, syn := range topic.Synonyms {
		if strings.Contains(q, syn) {
			if _, strong := strongSynonyms[syn]; strong {
				score += 12
			} else {
				score += 6
			}
		} else if synonymWordTokenized(syn, tokenSet) {
			score += 2
		}
	}

	return score
}

// wordPrefixMatch reports whether w occurs in q starting at a word
// boundary. Suffix extension is allowed, so "attack" matches "attacks",
// but "day" does not match inside "today".
func wordPrefixMatch(q, w string) bool {
	if w == "" {
		return false
	}
	for i := 0; ; {
		j := strings.Index(q[i:], w)
		if j < 0 {
			return false
		}
		pos := i + j
		if pos == 0 || !isWordChar(q[pos-1]) {
			return true
		}
		i = pos + 1
	}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// synonymWordTokenized reports whether any extracted query token equals
// one of the synonym's individual words.
func synonymWordTokenized(synonym string, tokenSet map[string]struct{}) bool {
	for _, w := range strings.Fields(synonym) {
		if _, ok := tokenSet[w]; ok {
			return true
		}
	}
	return false
}

func anyScoreAbove(scores map[string]int, threshold int) bool {
	for _, s := range scores {
		if s > threshold {
			return true
		}
	}
	return false
}

// selectTopics applies the two-tier selection policy: every candidate
// scoring at least 8, padded with up to two candidates in [5,8); or,
// when nothing reaches 8, the top three candidates scoring at least 5.
// A query with no candidate at 5 yields no topics at all.
func selectTopics(ranked []Match) []string {
	var high []string
	for _, m := range ranked {
		if m.Confidence >= 8 {
			high = append(high, m.TopicID)
		}
	}

	var picked []string
	if len(high) > 0 {
		picked = append(picked, high...)
		added := 0
		for _, m := range ranked {
			if added == 2 {
				break
			}
			if m.Confidence >= 5 && m.Confidence < 8 && !containsString(picked, m.TopicID) {
				picked = append(picked, m.TopicID)
				added++
			}
		}
	} else {
		for _, m := range ranked {
			if len(picked) == 3 {
				break
			}
			if m.Confidence >= 5 {
				picked = append(picked, m.TopicID)
			}
		}
	}

	seen := make(map[string]struct{}, len(picked))
	var final []string
	for _, id := range picked {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		final = append(final, id)
	}

	if len(final) > 5 {
		final = final[:5]
	}
	return final
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
