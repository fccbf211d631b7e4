package compact

import (
	"testing"

	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/mining"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/trace"
	"github.com/stretchr/testify/assert"
)

type memStore struct {
	checkpoints []*Checkpoint
}

func (ms *memStore) SaveCheckpoint(cp *Checkpoint) error {
	ms.checkpoints = append(ms.checkpoints, cp)
	return nil
}

func testRules() []Rule {
	return []Rule{
		{Kind: RuleRun, Token: "a", Symbol: "multi_a"},
		{Kind: RuleRun, Token: "b", Symbol: "multi_b"},
		{Kind: RuleSequence, Pattern: []string{"multi_a", "c"}, Symbol: "seq_0"},
		{Kind: RuleRun, Token: "c", Symbol: "multi_c"},
	}
}

func TestCheckpointSplitsRules(t *testing.T) {
	rules := testRules()
	corpus := [][]string{{"a", "b"}}
	cp := NewCheckpoint(2, rules, corpus)
	assert.Equal(t, 2, cp.Iteration)
	assert.Equal(t, rules[:2], cp.Applied)
	assert.Equal(t, rules[2:], cp.Pending)
	assert.Equal(t, corpus, cp.Corpus)
}

func TestCheckpointRoundTrip(t *testing.T) {
	cp := NewCheckpoint(2, testRules(), [][]string{{"multi_a", "c"}, {"b"}})
	data, err := cp.Marshal()
	assert.NoError(t, err)
	restored, err := UnmarshalCheckpoint(data)
	assert.NoError(t, err)
	assert.Equal(t, cp.Iteration, restored.Iteration)
	assert.Equal(t, cp.Applied, restored.Applied)
	assert.Equal(t, cp.Pending, restored.Pending)
	assert.Equal(t, cp.Corpus, restored.Corpus)
}

func TestUnmarshalCheckpointGarbage(t *testing.T) {
	_, err := UnmarshalCheckpoint([]byte("definitely not msgpack"))
	assert.Error(t, err)
}

func TestApplyWritesCheckpoints(t *testing.T) {
	corpus := [][]string{
		{"a", "a", "c", "b", "b"},
		{"c", "c", "a"},
	}
	store := &memStore{}
	c := NewCompactor(2, 2, store)
	_, err := c.Apply(corpus, testRules(), 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(store.checkpoints))
	assert.Equal(t, 2, store.checkpoints[0].Iteration)
	assert.Equal(t, 4, store.checkpoints[1].Iteration)
}

func TestResumeMatchesUninterruptedRun(t *testing.T) {
	corpus := [][]string{
		{"a", "a", "c", "b", "b", "a"},
		{"c", "c", "a", "a", "c"},
		{"b", "a", "c"},
	}
	rules := testRules()
	c := NewCompactor(2, 0, nil)
	full, err := c.Apply(corpus, rules, 0)
	assert.NoError(t, err)

	// interrupt after every possible prefix and finish from the record
	for iteration := 1; iteration < len(rules); iteration++ {
		mid, err := c.Apply(corpus, rules[:iteration], 0)
		assert.NoError(t, err)
		cp := NewCheckpoint(iteration, rules, mid)
		data, err := cp.Marshal()
		assert.NoError(t, err)
		restored, err := UnmarshalCheckpoint(data)
		assert.NoError(t, err)
		resumed, err := c.Resume(restored)
		assert.NoError(t, err)
		assert.Equal(t, full, resumed)
	}
}

func TestSequenceRulesMarkerExclusion(t *testing.T) {
	seqs := []mining.FrequentSequence{
		{Tokens: []string{"open", "read"}, Size: 2, Name: "seq_0"},
		{Tokens: []string{"True", "read"}, Size: 2, Name: "seq_1"},
		{Tokens: []string{"write", "False"}, Size: 2, Name: "seq_2"},
	}
	rules := SequenceRules(seqs, []string{"True", "False"})
	assert.Equal(t, 1, len(rules))
	assert.Equal(t, []string{"open", "read"}, rules[0].Pattern)
	assert.Equal(t, "seq_0", rules[0].Symbol)
}

func TestCompactNamedSequences(t *testing.T) {
	corpus := [][]string{
		{"open", "read", "open", "read", "close"},
		{"open", "read", "close"},
	}
	vocab := trace.NewBaseVocabulary([]string{"close", "open", "read"})
	seqs := []mining.FrequentSequence{
		{Tokens: []string{"open", "read"}, Size: 2, Name: "seq_0"},
	}
	c := NewCompactor(2, 0, nil)
	ans, err := c.CompactNamedSequences(corpus, vocab, seqs, []string{"True", "False"})
	assert.NoError(t, err)
	// substitution first, then the run pass collapses repeated symbols
	assert.Equal(t, [][]string{
		{"multi_seq_0", "close"},
		{"seq_0", "close"},
	}, ans)
	sym, ok := vocab.Get("seq_0")
	assert.True(t, ok)
	assert.Equal(t, trace.SymbolMined, sym.Kind)
	assert.Equal(t, []string{"open", "read"}, sym.Source)
	_, ok = vocab.Get("multi_seq_0")
	assert.True(t, ok)
}
