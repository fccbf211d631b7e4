package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseVocabularyCanonicalOrder(t *testing.T) {
	vocab := NewBaseVocabulary([]string{"write", "open", "read"})
	entries := vocab.Snapshot()
	assert.Equal(t, 3, len(entries))
	assert.Equal(t, "open", entries[0].Name)
	assert.Equal(t, "read", entries[1].Name)
	assert.Equal(t, "write", entries[2].Name)
	for i, sym := range entries {
		assert.Equal(t, i, sym.ID)
	}
}

func TestVocabularyAppendOnly(t *testing.T) {
	vocab := NewBaseVocabulary([]string{"a"})
	v0 := vocab.Version()
	sym, err := vocab.AddRun("a")
	assert.NoError(t, err)
	assert.Equal(t, "multi_a", sym.Name)
	assert.Equal(t, 1, sym.ID)
	assert.Greater(t, vocab.Version(), v0)

	_, err = vocab.AddRun("a")
	assert.Error(t, err)
	assert.Equal(t, 2, vocab.Size())
}

func TestVocabularyMinedSymbolMapping(t *testing.T) {
	vocab := NewVocabulary()
	_, err := vocab.AddMined("seq_0", []string{"open", "read"})
	assert.NoError(t, err)
	sym, ok := vocab.Get("seq_0")
	assert.True(t, ok)
	assert.Equal(t, SymbolMined, sym.Kind)
	assert.Equal(t, []string{"open", "read"}, sym.Source)
}

func TestSnapshotIsolation(t *testing.T) {
	vocab := NewBaseVocabulary([]string{"a", "b"})
	snap := vocab.Snapshot()
	_, err := vocab.AddRun("a")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(snap))
	assert.Equal(t, 3, vocab.Size())
}

func TestSnapshotKind(t *testing.T) {
	vocab := NewBaseVocabulary([]string{"a", "b"})
	_, err := vocab.AddRun("a")
	assert.NoError(t, err)
	base := vocab.SnapshotKind(SymbolBase)
	assert.Equal(t, 2, len(base))
	runs := vocab.SnapshotKind(SymbolRun)
	assert.Equal(t, 1, len(runs))
	assert.Equal(t, "multi_a", runs[0].Name)
}
