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

package cnf

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
)

const (
	dfltServerWriteTimeoutSecs = 30
	dfltMaxNumConcurrentJobs   = 4
	dfltTimeZone               = "Europe/Prague"
	dfltMaxSeqLen              = 2
	dfltCheckpointEvery        = 50
	dfltNumSimilarTraces       = 5
)

var (
	dfltMarkerLiterals = []string{"True", "False"}
)

// MiningConf configures the sequential pattern miner.
type MiningConf struct {
	CaseThreshold  float64 `json:"caseThreshold"`
	TotalThreshold float64 `json:"totalThreshold"`
	MaxSeqLen      int     `json:"maxSeqLen"`
}

// CompactionConf configures the trace rewrite engine.
type CompactionConf struct {

	// CheckpointEvery makes the compactor persist its progress
	// record every N applied rules (0 disables checkpointing).
	CheckpointEvery int `json:"checkpointEvery"`

	// MarkerLiterals are tokens injected by the upstream encoding
	// which must never take part in sequence substitution.
	MarkerLiterals []string `json:"markerLiterals"`
}

type Conf struct {
	srcPath                string
	Logging                logging.LoggingConf `json:"logging"`
	ListenAddress          string              `json:"listenAddress"`
	PublicURL              string              `json:"publicUrl"`
	ListenPort             int                 `json:"listenPort"`
	ServerReadTimeoutSecs  int                 `json:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int                 `json:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string            `json:"corsAllowedOrigins"`
	TimeZone               string              `json:"timeZone"`

	// WorkingDBPath is the sqlite3 database with the trace corpus
	// and mined frequent sequences.
	WorkingDBPath string `json:"workingDbPath"`

	// FeatsDataPath is the Badger database with feature vectors
	// and compaction checkpoints.
	FeatsDataPath string `json:"featsDataPath"`

	// W2VModelPath is a binary word2vec model with per-token
	// embeddings (mutually exclusive with EmbeddingTablePath).
	W2VModelPath string `json:"w2vModelPath"`

	// EmbeddingTablePath is a plain JSON token->vector table.
	EmbeddingTablePath string `json:"embeddingTablePath"`

	MaxNumConcurrentJobs int `json:"maxNumConcurrentJobs"`

	NumSimilarTraces int `json:"numSimilarTraces"`

	Mining MiningConf `json:"mining"`

	Compaction CompactionConf `json:"compaction"`
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = json.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

func ValidateAndDefaults(conf *Conf) {
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.PublicURL == "" {
		conf.PublicURL = fmt.Sprintf("http://%s", conf.ListenAddress)
		log.Warn().Str("address", conf.PublicURL).Msg("publicUrl not set, using listenAddress")
	}

	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Warn().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		log.Fatal().Err(err).Msg("invalid time zone")
	}

	if conf.WorkingDBPath == "" {
		log.Fatal().Msg("workingDbPath not specified")
	}

	if conf.MaxNumConcurrentJobs == 0 {
		conf.MaxNumConcurrentJobs = dfltMaxNumConcurrentJobs
		log.Warn().Msgf(
			"maxNumConcurrentJobs not specified, using default: %d",
			dfltMaxNumConcurrentJobs,
		)
	}

	if conf.NumSimilarTraces == 0 {
		conf.NumSimilarTraces = dfltNumSimilarTraces
	}

	// threshold zero would mean "everything is frequent" which is
	// always a configuration error, not an intent
	if conf.Mining.CaseThreshold <= 0 {
		log.Fatal().
			Float64("caseThreshold", conf.Mining.CaseThreshold).
			Msg("mining.caseThreshold must be a value from (0, 1]")
	}
	if conf.Mining.TotalThreshold <= 0 {
		log.Fatal().
			Float64("totalThreshold", conf.Mining.TotalThreshold).
			Msg("mining.totalThreshold must be a value from (0, 1]")
	}
	if conf.Mining.MaxSeqLen == 0 {
		conf.Mining.MaxSeqLen = dfltMaxSeqLen
		log.Warn().Msgf("mining.maxSeqLen not specified, using default: %d", dfltMaxSeqLen)
	}

	if conf.Compaction.CheckpointEvery == 0 {
		conf.Compaction.CheckpointEvery = dfltCheckpointEvery
		log.Warn().Msgf(
			"compaction.checkpointEvery not specified, using default: %d",
			dfltCheckpointEvery,
		)
	}
	if conf.Compaction.MarkerLiterals == nil {
		conf.Compaction.MarkerLiterals = dfltMarkerLiterals
	}
}
