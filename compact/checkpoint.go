package compact

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Checkpoint is a serializable compaction progress record: how many
// rules of the ordered list were applied, which ones (plus the ones
// still pending), and the corpus state their application produced.
// Restoring the record and applying the pending rules continues the
// run exactly where it stopped.
type Checkpoint struct {
	Iteration int        `msgpack:"iteration"`
	Applied   []Rule     `msgpack:"applied"`
	Pending   []Rule     `msgpack:"pending"`
	Corpus    [][]string `msgpack:"corpus"`
}

func NewCheckpoint(iteration int, rules []Rule, corpus [][]string) *Checkpoint {
	cp := &Checkpoint{
		Iteration: iteration,
		Applied:   make([]Rule, iteration),
		Pending:   make([]Rule, len(rules)-iteration),
		Corpus:    make([][]string, len(corpus)),
	}
	copy(cp.Applied, rules[:iteration])
	copy(cp.Pending, rules[iteration:])
	copy(cp.Corpus, corpus)
	return cp
}

// Resume applies the pending rules of the checkpoint to its stored
// corpus state, finishing the interrupted run.
func (c *Compactor) Resume(cp *Checkpoint) ([][]string, error) {
	rules := make([]Rule, 0, len(cp.Applied)+len(cp.Pending))
	rules = append(rules, cp.Applied...)
	rules = append(rules, cp.Pending...)
	return c.Apply(cp.Corpus, rules, cp.Iteration)
}

func (cp *Checkpoint) Marshal() ([]byte, error) {
	ans, err := msgpack.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize compaction checkpoint: %w", err)
	}
	return ans, nil
}

func UnmarshalCheckpoint(data []byte) (*Checkpoint, error) {
	var cp Checkpoint
	if err := msgpack.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to deserialize compaction checkpoint: %w", err)
	}
	return &cp, nil
}
