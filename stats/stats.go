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
	"database/sql"
	"fmt"
	"strings"

	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/mining"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/trace"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

type Database struct {
	db *sql.DB
	tx *sql.Tx
}

func (database *Database) createTracesTable() error {
	_, err := database.db.Exec(
		"CREATE TABLE traces (" +
			"id TEXT PRIMARY KEY NOT NULL, " +
			"window TEXT NOT NULL, " +
			"process TEXT NOT NULL, " +
			"tokens TEXT NOT NULL, " +
			"length INTEGER NOT NULL, " +
			"compactedTokens TEXT, " +
			"compactedLength INTEGER, " +
			"label INTEGER NOT NULL DEFAULT 0, " +
			"trainingExclude INT NOT NULL DEFAULT 0" +
			")",
	)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	log.Info().Msg("created table `traces`")
	return nil
}

func (database *Database) createFrequentSequenceTable() error {
	_, err := database.db.Exec(
		"CREATE TABLE frequent_sequence (" +
			"name TEXT PRIMARY KEY NOT NULL, " +
			"tokens TEXT NOT NULL, " +
			"size INTEGER NOT NULL, " +
			"caseSupport FLOAT NOT NULL, " +
			"totalSupport FLOAT NOT NULL, " +
			"sortOrder INTEGER NOT NULL" +
			")",
	)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	log.Info().Msg("created table `frequent_sequence`")
	return nil
}

func (database *Database) tableExists(tn string) (bool, error) {
	ans := database.db.QueryRow(
		fmt.Sprintf("SELECT name FROM sqlite_master WHERE type='table' AND name='%s'", tn))
	var nm sql.NullString
	err := ans.Scan(&nm)
	if err == sql.ErrNoRows {
		return false, nil

	} else if err != nil {
		return false, fmt.Errorf("failed to determine existence of table %s: %w", tn, err)
	}
	return true, nil
}

func (database *Database) Init() error {
	ex, err := database.tableExists("traces")
	if err != nil {
		return fmt.Errorf("failed to init table traces: %w", err)
	}
	if ex {
		log.Info().Str("table", "traces").Msg("table already exists")

	} else {
		if err := database.createTracesTable(); err != nil {
			return fmt.Errorf("failed to create table traces: %w", err)
		}
	}

	ex, err = database.tableExists("frequent_sequence")
	if err != nil {
		return fmt.Errorf("failed to init table frequent_sequence: %w", err)
	}
	if ex {
		log.Info().Str("table", "frequent_sequence").Msg("table already exists")

	} else {
		if err := database.createFrequentSequenceTable(); err != nil {
			return fmt.Errorf("failed to create table frequent_sequence: %w", err)
		}
	}

	return nil
}

func (database *Database) AddTrace(rec TraceRecord) error {
	id := rec.ID
	if id == "" {
		id = IdempotentID(rec.Window, rec.Process)
	}
	_, err := database.db.Exec(
		"INSERT OR REPLACE INTO traces "+
			"(id, window, process, tokens, length, compactedTokens, compactedLength, label, trainingExclude) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id,
		rec.Window,
		rec.Process,
		rec.Tokens,
		rec.Length,
		rec.CompactedTokens,
		rec.CompactedLength,
		rec.Label,
		rec.TrainingExclude,
	)
	if err != nil {
		return fmt.Errorf("failed to add trace record: %w", err)
	}
	return nil
}

// ImportCorpus stores all traces of the corpus within
// a single transaction.
func (database *Database) ImportCorpus(corpus *trace.Corpus, trainingExclude bool) error {
	tx, err := database.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to import corpus: %w", err)
	}
	for _, tr := range corpus.Traces {
		rec := NewTraceRecord(tr)
		rec.TrainingExclude = trainingExclude
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO traces "+
				"(id, window, process, tokens, length, compactedTokens, compactedLength, label, trainingExclude) "+
				"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			rec.ID,
			rec.Window,
			rec.Process,
			rec.Tokens,
			rec.Length,
			rec.CompactedTokens,
			rec.CompactedLength,
			rec.Label,
			rec.TrainingExclude,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to import corpus: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateCompacted stores the compacted version of a single trace.
func (database *Database) UpdateCompacted(id string, compactedTokens string, compactedLength int) error {
	_, err := database.db.Exec(
		"UPDATE traces SET compactedTokens = ?, compactedLength = ? WHERE id = ?",
		compactedTokens,
		compactedLength,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update compacted trace: %w", err)
	}
	return nil
}

// StoreCompactedCorpus writes compacted versions of all corpus traces
// within a single transaction.
func (database *Database) StoreCompactedCorpus(corpus *trace.Corpus) error {
	tx, err := database.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to store compacted corpus: %w", err)
	}
	for _, tr := range corpus.Traces {
		if tr.Compacted == nil {
			continue
		}
		_, err := tx.Exec(
			"UPDATE traces SET compactedTokens = ?, compactedLength = ? WHERE id = ?",
			trace.Encode(tr.Compacted),
			tr.CompactedLength,
			tr.ID,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to store compacted corpus: %w", err)
		}
	}
	return tx.Commit()
}

// GetAllRecords loads trace records matching the filter,
// ordered by window and process for stable output.
func (database *Database) GetAllRecords(filter ListFilter) ([]TraceRecord, error) {
	query := "SELECT id, window, process, tokens, length, compactedTokens, compactedLength, label, trainingExclude " +
		"FROM traces WHERE %s ORDER BY window, process, id"
	whereChunks := make([]string, 0, 3)
	whereChunks = append(whereChunks, "1 = 1")
	if filter.Labeled != nil {
		if *filter.Labeled {
			whereChunks = append(whereChunks, "label != 0")

		} else {
			whereChunks = append(whereChunks, "label = 0")
		}
	}
	if filter.Compacted != nil {
		if *filter.Compacted {
			whereChunks = append(whereChunks, "compactedTokens IS NOT NULL AND compactedTokens != ''")

		} else {
			whereChunks = append(whereChunks, "(compactedTokens IS NULL OR compactedTokens = '')")
		}
	}
	if filter.TrainingExcluded != nil {
		if *filter.TrainingExcluded {
			whereChunks = append(whereChunks, "trainingExclude = 1")

		} else {
			whereChunks = append(whereChunks, "trainingExclude = 0")
		}
	}

	rows, err := database.db.Query(fmt.Sprintf(query, strings.Join(whereChunks, " AND ")))
	if err != nil {
		return []TraceRecord{}, fmt.Errorf("failed to fetch all records: %w", err)
	}
	ans := make([]TraceRecord, 0, 500)
	for rows.Next() {
		rec, err := scanTraceRecord(rows)
		if err != nil {
			return []TraceRecord{}, fmt.Errorf("failed to fetch all records: %w", err)
		}
		ans = append(ans, rec)
	}
	return ans, nil
}

func (database *Database) GetRecord(id string) (TraceRecord, error) {
	row := database.db.QueryRow(
		"SELECT id, window, process, tokens, length, compactedTokens, compactedLength, label, trainingExclude "+
			"FROM traces WHERE id = ?", id)
	rec, err := scanTraceRecord(row)
	if err == sql.ErrNoRows {
		return rec, fmt.Errorf("failed to fetch trace %s: not found", id)

	} else if err != nil {
		return rec, fmt.Errorf("failed to fetch trace %s: %w", id, err)
	}
	return rec, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTraceRecord(row scannable) (TraceRecord, error) {
	var rec TraceRecord
	var compactedTokens sql.NullString
	var compactedLength sql.NullInt64
	err := row.Scan(
		&rec.ID,
		&rec.Window,
		&rec.Process,
		&rec.Tokens,
		&rec.Length,
		&compactedTokens,
		&compactedLength,
		&rec.Label,
		&rec.TrainingExclude,
	)
	if err != nil {
		return rec, err
	}
	if compactedTokens.Valid {
		rec.CompactedTokens = compactedTokens.String
	}
	if compactedLength.Valid {
		rec.CompactedLength = int(compactedLength.Int64)
	}
	return rec, nil
}

// LoadCorpus loads the filtered records converted into
// the in-memory corpus form.
func (database *Database) LoadCorpus(filter ListFilter) (*trace.Corpus, error) {
	recs, err := database.GetAllRecords(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	ans := &trace.Corpus{Traces: make([]trace.Trace, len(recs))}
	for i, rec := range recs {
		ans.Traces[i] = rec.AsTrace()
	}
	return ans, nil
}

// StoreFrequentSequences replaces the stored mining output. A partial
// sequence set would make downstream substitution unsound, so the
// delete and all inserts share one transaction.
func (database *Database) StoreFrequentSequences(seqs []mining.FrequentSequence) error {
	tx, err := database.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to store frequent sequences: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM frequent_sequence"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to store frequent sequences: %w", err)
	}
	for i, fs := range seqs {
		_, err := tx.Exec(
			"INSERT INTO frequent_sequence (name, tokens, size, caseSupport, totalSupport, sortOrder) "+
				"VALUES (?, ?, ?, ?, ?, ?)",
			fs.Name,
			trace.Encode(fs.Tokens),
			fs.Size,
			fs.CaseSupport,
			fs.TotalSupport,
			i,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to store frequent sequences: %w", err)
		}
	}
	return tx.Commit()
}

// GetFrequentSequences loads the stored mining output in its
// canonical order.
func (database *Database) GetFrequentSequences() ([]mining.FrequentSequence, error) {
	rows, err := database.db.Query(
		"SELECT name, tokens, size, caseSupport, totalSupport " +
			"FROM frequent_sequence ORDER BY sortOrder")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch frequent sequences: %w", err)
	}
	ans := make([]mining.FrequentSequence, 0, 100)
	for rows.Next() {
		var fs mining.FrequentSequence
		var tokens string
		err := rows.Scan(&fs.Name, &tokens, &fs.Size, &fs.CaseSupport, &fs.TotalSupport)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch frequent sequences: %w", err)
		}
		fs.Tokens = trace.ParseEncoded(tokens)
		ans = append(ans, fs)
	}
	return ans, nil
}

func (database *Database) StartTx() error {
	if database.tx != nil {
		panic("a transaction is already running")
	}
	var err error
	database.tx, err = database.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	return nil
}

func (database *Database) CommitTx() error {
	if database.tx == nil {
		panic("no transaction running")
	}
	err := database.tx.Commit()
	database.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (database *Database) RollbackTx() error {
	if database.tx == nil {
		panic("no transaction running")
	}
	err := database.tx.Rollback()
	database.tx = nil
	if err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func NewDatabase(path string) (*Database, error) {
	dbConn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}
	return &Database{
		db: dbConn,
	}, nil
}
