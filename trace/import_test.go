package trace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportJSONL(t *testing.T) {
	src := strings.Join([]string{
		`{"id": "t1", "window": "w1", "process": "p1", "tokens": ["open", "read"], "attack": true}`,
		``,
		`{"id": "t2", "window": "w1", "process": "p2", "tokens": ["close"], "attack": false}`,
		`{"id": "t3", "window": "w2", "process": "p1", "tokens": []}`,
	}, "\n")
	corpus, err := ImportJSONL(strings.NewReader(src))
	assert.NoError(t, err)
	assert.Equal(t, 3, corpus.Len())

	assert.Equal(t, "t1", corpus.Traces[0].ID)
	assert.Equal(t, []string{"open", "read"}, corpus.Traces[0].Tokens)
	assert.Equal(t, 2, corpus.Traces[0].Length)
	assert.Equal(t, LabelAttack, corpus.Traces[0].Label)

	assert.Equal(t, LabelNormal, corpus.Traces[1].Label)
	assert.Equal(t, LabelUnknown, corpus.Traces[2].Label)
	assert.Equal(t, 0, corpus.Traces[2].Length)
}

func TestImportJSONLMalformedLine(t *testing.T) {
	src := `{"id": "t1", "tokens": ["open"]}
not json at all`
	_, err := ImportJSONL(strings.NewReader(src))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestImportJSONLMissingID(t *testing.T) {
	src := `{"window": "w1", "tokens": ["open"]}`
	_, err := ImportJSONL(strings.NewReader(src))
	assert.Error(t, err)
}

func TestImportJSONLEmpty(t *testing.T) {
	corpus, err := ImportJSONL(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Equal(t, 0, corpus.Len())
}
