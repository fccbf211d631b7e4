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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// importRecord is a single line of the JSONL export produced by
// the upstream audit log extraction stage.
type importRecord struct {
	ID      string   `json:"id"`
	Window  string   `json:"window"`
	Process string   `json:"process"`
	Tokens  []string `json:"tokens"`
	Attack  *bool    `json:"attack"`
}

// ImportJSONL reads a trace corpus from its JSONL interchange form.
// Empty lines are skipped, a malformed line aborts the whole import.
func ImportJSONL(r io.Reader) (*Corpus, error) {
	scnr := bufio.NewScanner(r)
	scnr.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	ans := &Corpus{Traces: make([]Trace, 0, 1000)}
	var lineNum int
	for scnr.Scan() {
		lineNum++
		line := scnr.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec importRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("failed to import trace corpus (line %d): %w", lineNum, err)
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("failed to import trace corpus (line %d): missing trace id", lineNum)
		}
		label := LabelUnknown
		if rec.Attack != nil {
			if *rec.Attack {
				label = LabelAttack

			} else {
				label = LabelNormal
			}
		}
		ans.Traces = append(ans.Traces, Trace{
			ID:      rec.ID,
			Window:  rec.Window,
			Process: rec.Process,
			Tokens:  rec.Tokens,
			Length:  len(rec.Tokens),
			Label:   label,
		})
	}
	if err := scnr.Err(); err != nil {
		return nil, fmt.Errorf("failed to import trace corpus: %w", err)
	}
	log.Info().Int("numTraces", ans.Len()).Msg("imported trace corpus")
	return ans, nil
}

// ImportJSONLFile is a file-opening convenience wrapper
// around ImportJSONL.
func ImportJSONLFile(path string) (*Corpus, error) {
	fr, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to import trace corpus: %w", err)
	}
	defer fr.Close()
	return ImportJSONL(fr)
}
