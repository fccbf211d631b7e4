// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import (
	"path/filepath"
	"testing"

	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/mining"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/trace"
	"github.com/stretchr/testify/assert"
)

func testDatabase(t *testing.T) *Database {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)
	assert.NoError(t, db.Init())
	return db
}

func TestInitIsIdempotent(t *testing.T) {
	db := testDatabase(t)
	assert.NoError(t, db.Init())
}

func TestAddAndGetRecord(t *testing.T) {
	db := testDatabase(t)
	rec := TraceRecord{
		ID:      "t1",
		Window:  "w1",
		Process: "p1",
		Tokens:  ",open,read,close",
		Length:  3,
		Label:   trace.LabelAttack,
	}
	assert.NoError(t, db.AddTrace(rec))
	stored, err := db.GetRecord("t1")
	assert.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
	assert.Equal(t, rec.Window, stored.Window)
	assert.Equal(t, rec.Process, stored.Process)
	assert.Equal(t, rec.Tokens, stored.Tokens)
	assert.Equal(t, rec.Length, stored.Length)
	assert.Equal(t, trace.LabelAttack, stored.Label)
	assert.Equal(t, "", stored.CompactedTokens)
	assert.False(t, stored.TrainingExclude)
}

func TestAddTraceAssignsIdempotentID(t *testing.T) {
	db := testDatabase(t)
	rec := TraceRecord{Window: "w1", Process: "p1", Tokens: ",open", Length: 1}
	assert.NoError(t, db.AddTrace(rec))
	stored, err := db.GetRecord(IdempotentID("w1", "p1"))
	assert.NoError(t, err)
	assert.Equal(t, "w1", stored.Window)
}

func TestGetRecordNotFound(t *testing.T) {
	db := testDatabase(t)
	_, err := db.GetRecord("missing")
	assert.Error(t, err)
}

func TestImportAndLoadCorpus(t *testing.T) {
	db := testDatabase(t)
	corpus := &trace.Corpus{
		Traces: []trace.Trace{
			{ID: "t1", Window: "w1", Process: "p1", Tokens: []string{"open", "read"}, Length: 2},
			{ID: "t2", Window: "w1", Process: "p2", Tokens: []string{"close"}, Length: 1, Label: trace.LabelNormal},
		},
	}
	assert.NoError(t, db.ImportCorpus(corpus, false))
	loaded, err := db.LoadCorpus(ListFilter{})
	assert.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, []string{"open", "read"}, loaded.Traces[0].Tokens)
	assert.Equal(t, trace.LabelNormal, loaded.Traces[1].Label)
}

func TestStoreCompactedCorpus(t *testing.T) {
	db := testDatabase(t)
	corpus := &trace.Corpus{
		Traces: []trace.Trace{
			{ID: "t1", Window: "w1", Process: "p1", Tokens: []string{"open", "open", "read"}, Length: 3},
		},
	}
	assert.NoError(t, db.ImportCorpus(corpus, false))
	corpus.Traces[0].Compacted = []string{"multi_open", "read"}
	corpus.Traces[0].CompactedLength = 2
	assert.NoError(t, db.StoreCompactedCorpus(corpus))

	stored, err := db.GetRecord("t1")
	assert.NoError(t, err)
	assert.Equal(t, ",multi_open,read", stored.CompactedTokens)
	assert.Equal(t, 2, stored.CompactedLength)
	// raw form stays available
	assert.Equal(t, ",open,open,read", stored.Tokens)
	tr := stored.AsTrace()
	assert.Equal(t, []string{"multi_open", "read"}, tr.CurrentTokens())
}

func TestGetAllRecordsFilters(t *testing.T) {
	db := testDatabase(t)
	records := []TraceRecord{
		{ID: "t1", Window: "w1", Process: "p1", Tokens: ",a", Length: 1, Label: trace.LabelAttack},
		{ID: "t2", Window: "w1", Process: "p2", Tokens: ",b", Length: 1, CompactedTokens: ",b", CompactedLength: 1},
		{ID: "t3", Window: "w2", Process: "p1", Tokens: ",c", Length: 1, TrainingExclude: true},
	}
	for _, rec := range records {
		assert.NoError(t, db.AddTrace(rec))
	}

	labeled, err := db.GetAllRecords(ListFilter{}.SetLabeled(true))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(labeled))
	assert.Equal(t, "t1", labeled[0].ID)

	compacted, err := db.GetAllRecords(ListFilter{}.SetCompacted(true))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(compacted))
	assert.Equal(t, "t2", compacted[0].ID)

	uncompacted, err := db.GetAllRecords(ListFilter{}.SetCompacted(false))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(uncompacted))

	trainable, err := db.GetAllRecords(ListFilter{}.SetTrainingExcluded(false))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(trainable))

	all, err := db.GetAllRecords(ListFilter{})
	assert.NoError(t, err)
	assert.Equal(t, 3, len(all))
	// ordered by window, process, id
	assert.Equal(t, "t1", all[0].ID)
	assert.Equal(t, "t2", all[1].ID)
	assert.Equal(t, "t3", all[2].ID)
}

func TestFrequentSequenceRoundTrip(t *testing.T) {
	db := testDatabase(t)
	seqs := []mining.FrequentSequence{
		{Tokens: []string{"open", "read"}, Size: 2, CaseSupport: 1.0, TotalSupport: 0.75, Name: "seq_0"},
		{Tokens: []string{"read", "close"}, Size: 2, CaseSupport: 0.5, TotalSupport: 0.25, Name: "seq_1"},
		{Tokens: []string{"open"}, Size: 1, CaseSupport: 1.0, TotalSupport: 0.5, Name: "seq_2"},
	}
	assert.NoError(t, db.StoreFrequentSequences(seqs))
	stored, err := db.GetFrequentSequences()
	assert.NoError(t, err)
	assert.Equal(t, seqs, stored)
}

func TestStoreFrequentSequencesReplaces(t *testing.T) {
	db := testDatabase(t)
	first := []mining.FrequentSequence{
		{Tokens: []string{"a", "b"}, Size: 2, CaseSupport: 0.5, TotalSupport: 0.5, Name: "seq_0"},
	}
	assert.NoError(t, db.StoreFrequentSequences(first))
	second := []mining.FrequentSequence{
		{Tokens: []string{"c", "d"}, Size: 2, CaseSupport: 0.7, TotalSupport: 0.4, Name: "seq_0"},
	}
	assert.NoError(t, db.StoreFrequentSequences(second))
	stored, err := db.GetFrequentSequences()
	assert.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestTraceRecordRoundTrip(t *testing.T) {
	tr := trace.Trace{
		ID:              "t1",
		Window:          "w1",
		Process:         "p1",
		Tokens:          []string{"open", "open", "read"},
		Length:          3,
		Compacted:       []string{"multi_open", "read"},
		CompactedLength: 2,
		Label:           trace.LabelAttack,
	}
	ans := NewTraceRecord(tr).AsTrace()
	assert.Equal(t, tr, ans)
}

func TestIdempotentID(t *testing.T) {
	assert.Equal(t, IdempotentID("w1", "p1"), IdempotentID("w1", "p1"))
	assert.NotEqual(t, IdempotentID("w1", "p1"), IdempotentID("w1", "p2"))
	assert.NotEqual(t, IdempotentID("w1", "p1"), IdempotentID("w2", "p1"))
}
