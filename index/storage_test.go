package index

import (
	"testing"
	"time"

	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/compact"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/embops"
	"github.com/stretchr/testify/assert"
)

func testDB(t *testing.T) *DB {
	db, err := OpenDB(t.TempDir())
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testFeatureVector(id string) *embops.FeatureVector {
	return &embops.FeatureVector{
		ID:   id,
		N:    3,
		Mean: []float64{1.5, -0.5},
		Std:  []float64{0.2, 0.1},
		Min:  []float64{1.0, -1.0},
		Max:  []float64{2.0, 0.0},
	}
}

func TestTraceFeaturesRoundTrip(t *testing.T) {
	db := testDB(t)
	fv := testFeatureVector("t1")
	assert.NoError(t, db.StoreTraceFeatures(fv))
	stored, err := db.GetTraceFeatures("t1")
	assert.NoError(t, err)
	assert.Equal(t, fv, stored)
}

func TestGetTraceFeaturesMissing(t *testing.T) {
	db := testDB(t)
	_, err := db.GetTraceFeatures("missing")
	assert.Error(t, err)
}

func TestTraceAndGroupKeysAreDisjoint(t *testing.T) {
	db := testDB(t)
	assert.NoError(t, db.StoreTraceFeatures(testFeatureVector("x")))
	_, err := db.GetGroupFeatures("x")
	assert.Error(t, err)
}

func TestListGroupFeatures(t *testing.T) {
	db := testDB(t)
	assert.NoError(t, db.StoreGroupFeatures(testFeatureVector("w2")))
	assert.NoError(t, db.StoreGroupFeatures(testFeatureVector("w1")))
	assert.NoError(t, db.StoreTraceFeatures(testFeatureVector("t1")))
	groups, err := db.ListGroupFeatures()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(groups))
	assert.Equal(t, "w1", groups[0].ID)
	assert.Equal(t, "w2", groups[1].ID)
}

func TestCheckpointRoundTrip(t *testing.T) {
	db := testDB(t)
	rules := []compact.Rule{
		{Kind: compact.RuleRun, Token: "a", Symbol: "multi_a"},
		{Kind: compact.RuleSequence, Pattern: []string{"multi_a", "b"}, Symbol: "seq_0"},
	}
	cp := compact.NewCheckpoint(1, rules, [][]string{{"multi_a", "b"}})
	assert.NoError(t, db.SaveCheckpoint(cp))
	stored, err := db.LoadCheckpoint()
	assert.NoError(t, err)
	assert.Equal(t, cp.Iteration, stored.Iteration)
	assert.Equal(t, cp.Applied, stored.Applied)
	assert.Equal(t, cp.Pending, stored.Pending)
	assert.Equal(t, cp.Corpus, stored.Corpus)
}

func TestSaveCheckpointKeepsLatestOnly(t *testing.T) {
	db := testDB(t)
	rules := []compact.Rule{
		{Kind: compact.RuleRun, Token: "a", Symbol: "multi_a"},
		{Kind: compact.RuleRun, Token: "b", Symbol: "multi_b"},
	}
	assert.NoError(t, db.SaveCheckpoint(compact.NewCheckpoint(1, rules, [][]string{{"a"}})))
	assert.NoError(t, db.SaveCheckpoint(compact.NewCheckpoint(2, rules, [][]string{{"a"}})))
	stored, err := db.LoadCheckpoint()
	assert.NoError(t, err)
	assert.Equal(t, 2, stored.Iteration)
}

func TestLoadCheckpointEmpty(t *testing.T) {
	db := testDB(t)
	stored, err := db.LoadCheckpoint()
	assert.NoError(t, err)
	assert.Nil(t, stored)
}

func TestTimestampRoundTrip(t *testing.T) {
	db := testDB(t)
	now := time.Now().Truncate(time.Second)
	assert.NoError(t, db.StoreTimestamp("lastRun", now))
	stored, err := db.ReadTimestamp("lastRun")
	assert.NoError(t, err)
	assert.True(t, now.Equal(stored))
}

func TestCloseNil(t *testing.T) {
	var db *DB
	assert.NoError(t, db.Close())
}
