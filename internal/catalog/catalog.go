package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cyberpulse/backend/pkg/logger"
)

// Topic is one catalogued threat type. Topics are immutable after the
// catalog is built.
type Topic struct {
	ID       string
	Severity int
	Category string
	Synonyms []string
}

// KeywordGroup is a named group of general security keywords scanned
// during query extraction. Group order is significant: boost rules fire
// in group order, and the generic "attack" rule inspects the scores
// accumulated so far.
type KeywordGroup struct {
	Name     string
	Keywords []string
}

// BoostRule maps one keyword within one group to a confidence increment
// for a single topic. Conditional rules only fire while no topic has a
// score above 8.
type BoostRule struct {
	Group       string
	Keyword     string
	TopicID     string
	Boost       int
	Conditional bool
}

// Catalog holds the full extraction and scoring configuration: threat
// topics, keyword groups, boost rules, the high-impact keyword list and
// the credible-source substrings. Built once at startup and read-only
// afterwards.
type Catalog struct {
	topics  []Topic
	byID    map[string]int
	groups  []KeywordGroup
	boosts  map[string]BoostRule
	impact  []string
	sources []string
}

func New(topics []Topic, groups []KeywordGroup, boosts []BoostRule, highImpact, majorSources []string) (*Catalog, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("catalog has no topics")
	}

	byID := make(map[string]int, len(topics))
	for i, t := range topics {
		if t.ID == "" {
			return nil, fmt.Errorf("topic %d has empty id", i)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate topic id %q", t.ID)
		}
		if t.Severity < 1 || t.Severity > 5 {
			return nil, fmt.Errorf("topic %q severity %d out of range [1,5]", t.ID, t.Severity)
		}
		byID[t.ID] = i
	}

	boostIndex := make(map[string]BoostRule, len(boosts))
	for _, b := range boosts {
		if _, ok := byID[b.TopicID]; !ok {
			return nil, fmt.Errorf("boost rule %s/%s targets unknown topic %q", b.Group, b.Keyword, b.TopicID)
		}
		boostIndex[boostKey(b.Group, b.Keyword)] = b
	}

	logger.Info("Threat catalog loaded",
		zap.Int("topics", len(topics)),
		zap.Int("keyword_groups", len(groups)),
		zap.Int("boost_rules", len(boosts)),
	)

	return &Catalog{
		topics:  topics,
		byID:    byID,
		groups:  groups,
		boosts:  boostIndex,
		impact:  highImpact,
		sources: majorSources,
	}, nil
}

// Topics returns topics in catalog order. Downstream tie-breaking
// depends on this order being stable.
func (c *Catalog) Topics() []Topic {
	return c.topics
}

func (c *Catalog) Get(id string) (Topic, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Topic{}, false
	}
	return c.topics[i], true
}

func (c *Catalog) Groups() []KeywordGroup {
	return c.groups
}

// BoostFor returns the boost rule for a keyword inside a group, if one
// exists. Most group keywords map to no rule.
func (c *Catalog) BoostFor(group, keyword string) (BoostRule, bool) {
	b, ok := c.boosts[boostKey(group, keyword)]
	return b, ok
}

func (c *Catalog) HighImpactKeywords() []string {
	return c.impact
}

func (c *Catalog) MajorSources() []string {
	return c.sources
}

func boostKey(group, keyword string) string {
	return group + "/" + keyword
}
