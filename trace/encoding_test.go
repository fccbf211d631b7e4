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

package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, ",open,read,close", Encode([]string{"open", "read", "close"}))
}

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
	assert.Equal(t, "", Encode([]string{}))
}

func TestParseEncoded(t *testing.T) {
	assert.Equal(t, []string{"open", "read", "close"}, ParseEncoded(",open,read,close"))
}

func TestParseEncodedEmpty(t *testing.T) {
	assert.Nil(t, ParseEncoded(""))
	assert.Nil(t, ParseEncoded(","))
}

func TestEncodeParseRoundTrip(t *testing.T) {
	tokens := []string{"open", "multi_read", "seq_3"}
	assert.Equal(t, tokens, ParseEncoded(Encode(tokens)))
}

func TestWithCompactedKeepsRaw(t *testing.T) {
	tr := Trace{ID: "t1", Tokens: []string{"a", "a", "b"}, Length: 3}
	tr2, err := tr.WithCompacted([]string{"multi_a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "a", "b"}, tr2.Tokens)
	assert.Equal(t, []string{"multi_a", "b"}, tr2.Compacted)
	assert.Equal(t, 2, tr2.CompactedLength)
	assert.Nil(t, tr.Compacted)
}

func TestWithCompactedRejectsLonger(t *testing.T) {
	tr := Trace{ID: "t1", Tokens: []string{"a"}, Length: 1}
	_, err := tr.WithCompacted([]string{"a", "b"})
	assert.Error(t, err)
}

func TestCorpusDistinctTokens(t *testing.T) {
	corpus := Corpus{Traces: []Trace{
		{Tokens: []string{"read", "open", "read"}},
		{Tokens: []string{"close", "open"}},
	}}
	assert.Equal(t, []string{"close", "open", "read"}, corpus.DistinctTokens())
}
