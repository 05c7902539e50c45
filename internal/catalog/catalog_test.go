package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidCatalogs(t *testing.T) {
	valid := []Topic{{ID: "ransomware attack", Severity: 5, Category: "Malware"}}

	tests := []struct {
		name   string
		topics []Topic
		boosts []BoostRule
	}{
		{
			name:   "no topics",
			topics: nil,
		},
		{
			name:   "empty topic id",
			topics: []Topic{{ID: "", Severity: 3}},
		},
		{
			name: "duplicate topic id",
			topics: []Topic{
				{ID: "data breach", Severity: 4},
				{ID: "data breach", Severity: 4},
			},
		},
		{
			name:   "severity below range",
			topics: []Topic{{ID: "data breach", Severity: 0}},
		},
		{
			name:   "severity above range",
			topics: []Topic{{ID: "data breach", Severity: 6}},
		},
		{
			name:   "boost targets unknown topic",
			topics: valid,
			boosts: []BoostRule{{Group: "attacks", Keyword: "breach", TopicID: "data breach", Boost: 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.topics, nil, tt.boosts, nil, nil)
			assert.Error(t, err)
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Topics(), 10)

	ransomware, ok := c.Get("ransomware attack")
	require.True(t, ok)
	assert.Equal(t, 5, ransomware.Severity)
	assert.Equal(t, "Malware", ransomware.Category)
	assert.Contains(t, ransomware.Synonyms, "ransomware")

	_, ok = c.Get("unknown topic")
	assert.False(t, ok)

	rule, ok := c.BoostFor("malware", "ransomware")
	require.True(t, ok)
	assert.Equal(t, "ransomware attack", rule.TopicID)
	assert.Equal(t, 10, rule.Boost)
	assert.False(t, rule.Conditional)

	attack, ok := c.BoostFor("attacks", "attack")
	require.True(t, ok)
	assert.True(t, attack.Conditional)

	_, ok = c.BoostFor("attacks", "exploit")
	assert.False(t, ok, "most keywords carry no boost rule")

	assert.NotEmpty(t, c.HighImpactKeywords())
	assert.NotEmpty(t, c.MajorSources())
}

func TestTopicOrderIsStable(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	first := make([]string, 0, len(c.Topics()))
	for _, topic := range c.Topics() {
		first = append(first, topic.ID)
	}

	again, err := Default()
	require.NoError(t, err)

	second := make([]string, 0, len(again.Topics()))
	for _, topic := range again.Topics() {
		second = append(second, topic.ID)
	}

	assert.Equal(t, first, second)
}
