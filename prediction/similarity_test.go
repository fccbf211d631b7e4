package prediction

import (
	"path/filepath"
	"testing"

	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/stats"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/trace"
	"github.com/stretchr/testify/assert"
)

func testDatabase(t *testing.T) *stats.Database {
	db, err := stats.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)
	assert.NoError(t, db.Init())
	records := []stats.TraceRecord{
		{
			ID: "t1", Window: "w1", Process: "p1",
			Tokens: ",open,read", Length: 2,
			CompactedTokens: ",open,read", CompactedLength: 2,
			Label: trace.LabelAttack,
		},
		{
			ID: "t2", Window: "w1", Process: "p2",
			Tokens: ",open,read,close", Length: 3,
			CompactedTokens: ",open,read,close", CompactedLength: 3,
			Label: trace.LabelNormal,
		},
		{
			ID: "t3", Window: "w2", Process: "p1",
			Tokens: ",exec,fork", Length: 2,
			CompactedTokens: ",exec,fork", CompactedLength: 2,
			Label: trace.LabelAttack,
		},
		// unlabeled and uncompacted records never take part
		{
			ID: "t4", Window: "w2", Process: "p2",
			Tokens: ",open,read", Length: 2,
			CompactedTokens: ",open,read", CompactedLength: 2,
		},
		{
			ID: "t5", Window: "w3", Process: "p1",
			Tokens: ",open,read", Length: 2,
			Label: trace.LabelAttack,
		},
	}
	for _, rec := range records {
		assert.NoError(t, db.AddTrace(rec))
	}
	return db
}

func TestSimilarTraces(t *testing.T) {
	db := testDatabase(t)
	matches, err := SimilarTraces(db, ",open,read", 2)
	assert.NoError(t, err)
	items := matches.Items()
	assert.Equal(t, 2, len(items))
	assert.Equal(t, "t1", items[0].Record.ID)
	assert.Equal(t, 0, items[0].Distance)
	assert.Equal(t, "t2", items[1].Record.ID)
}

func TestSimilarTracesSkipsUnlabeled(t *testing.T) {
	db := testDatabase(t)
	matches, err := SimilarTraces(db, ",open,read", 10)
	assert.NoError(t, err)
	for _, item := range matches.Items() {
		assert.NotEqual(t, "t4", item.Record.ID)
		assert.NotEqual(t, "t5", item.Record.ID)
	}
}

func TestEstimateTrace(t *testing.T) {
	db := testDatabase(t)
	est, err := EstimateTrace(db, ",open,read", 2)
	assert.NoError(t, err)
	// nearest two: t1 (attack, dist 0) and t2 (normal, dist 6)
	assert.Equal(t, 0.5, est.AttackRatio)
	assert.Equal(t, 2, len(est.Neighbours))
}
