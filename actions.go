package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/apiserver"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/cnf"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/compact"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/embops"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/index"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/mining"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/stats"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/trace"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

const (
	errColor = color.FgHiRed
)

func openStatsDB(conf *cnf.Conf) *stats.Database {
	db, err := stats.NewDatabase(conf.WorkingDBPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorGeneralFailure)
	}
	if err := db.Init(); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorGeneralFailure)
	}
	return db
}

func openFeatsDB(conf *cnf.Conf) *index.DB {
	db, err := index.OpenDB(conf.FeatsDataPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorGeneralFailure)
	}
	return db
}

func runImport(conf *cnf.Conf, srcPath string, trainingExclude bool) {
	db := openStatsDB(conf)
	corpus, err := trace.ImportJSONLFile(srcPath)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorImportFailed)
	}
	if err := db.ImportCorpus(corpus, trainingExclude); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorImportFailed)
	}
}

// runMine performs the full abstraction pipeline: run collapsing,
// sequence mining over the collapsed corpus, substitution of mined
// size-2 sequences and the final re-collapsing of their repetitions.
func runMine(conf *cnf.Conf) {
	db := openStatsDB(conf)
	featsDB := openFeatsDB(conf)
	defer featsDB.Close()

	corpus, err := db.LoadCorpus(stats.ListFilter{})
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
	if corpus.Len() == 0 {
		color.New(errColor).Fprintln(os.Stderr, "no traces imported yet")
		os.Exit(exitErrorMiningFailed)
	}

	vocab := trace.NewBaseVocabulary(corpus.DistinctTokens())
	compactor := compact.NewCompactor(
		conf.MaxNumConcurrentJobs, conf.Compaction.CheckpointEvery, featsDB)

	collapsed, err := compactor.CompactRuns(
		corpus.TokenSeqs(), vocab, vocab.SnapshotKind(trace.SymbolBase))
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
	if err := corpus.ApplyCompacted(collapsed); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}

	miner := mining.NewMiner(mining.Config{
		CaseThreshold:  conf.Mining.CaseThreshold,
		TotalThreshold: conf.Mining.TotalThreshold,
		MaxSeqLen:      conf.Mining.MaxSeqLen,
		NumWorkers:     conf.MaxNumConcurrentJobs,
	})
	result, err := miner.Mine(corpus.TokenSeqs(), corpus.Lengths())
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
	if err := db.StoreFrequentSequences(result.Sequences); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
	log.Info().
		Int("numSequences", len(result.Sequences)).
		Msg("stored mined frequent sequences")

	substituted, err := compactor.CompactNamedSequences(
		corpus.TokenSeqs(), vocab, result.OfSize(2), conf.Compaction.MarkerLiterals)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
	if err := corpus.ApplyCompacted(substituted); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
	if err := db.StoreCompactedCorpus(corpus); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
}

func runResume(conf *cnf.Conf) {
	db := openStatsDB(conf)
	featsDB := openFeatsDB(conf)
	defer featsDB.Close()

	cp, err := featsDB.LoadCheckpoint()
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
	if cp == nil {
		color.New(errColor).Fprintln(os.Stderr, "no compaction checkpoint found")
		os.Exit(exitErrorMiningFailed)
	}
	log.Info().
		Int("iteration", cp.Iteration).
		Int("numPending", len(cp.Pending)).
		Msg("resuming compaction from checkpoint")

	compactor := compact.NewCompactor(
		conf.MaxNumConcurrentJobs, conf.Compaction.CheckpointEvery, featsDB)
	seqs, err := compactor.Resume(cp)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}

	corpus, err := db.LoadCorpus(stats.ListFilter{})
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
	if err := corpus.ApplyCompacted(seqs); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
	if err := db.StoreCompactedCorpus(corpus); err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorMiningFailed)
	}
}

func loadEmbeddingTable(conf *cnf.Conf) (*embops.Table, error) {
	if conf.W2VModelPath != "" {
		return embops.LoadWord2VecModel(conf.W2VModelPath)
	}
	if conf.EmbeddingTablePath != "" {
		return embops.LoadJSONTable(conf.EmbeddingTablePath)
	}
	return nil, fmt.Errorf("neither w2vModelPath nor embeddingTablePath configured")
}

func runFeatures(conf *cnf.Conf, groupBy, csvPath string) {
	db := openStatsDB(conf)
	featsDB := openFeatsDB(conf)
	defer featsDB.Close()

	corpus, err := db.LoadCorpus(stats.ListFilter{})
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFeaturesFailed)
	}
	tbl, err := loadEmbeddingTable(conf)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFeaturesFailed)
	}

	rows, err := embops.CorpusStats(corpus, tbl, conf.MaxNumConcurrentJobs)
	if err != nil {
		color.New(errColor).Fprintln(os.Stderr, err)
		os.Exit(exitErrorFeaturesFailed)
	}

	groupKeys := make(map[string]string, corpus.Len())
	for _, tr := range corpus.Traces {
		switch groupBy {
		case "process":
			groupKeys[tr.ID] = tr.Process
		case "label":
			groupKeys[tr.ID] = tr.Label.String()
		default:
			groupKeys[tr.ID] = tr.Window
		}
	}

	feats := make([]*embops.FeatureVector, len(rows))
	bar := progressbar.Default(int64(len(rows)), "storing trace features")
	for i, row := range rows {
		feats[i] = row.Features()
		if err := featsDB.StoreTraceFeatures(feats[i]); err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorFeaturesFailed)
		}
		bar.Add(1)
	}

	groups := embops.GroupBy(rows, func(sv *embops.StatsVector) string {
		return groupKeys[sv.ID]
	})
	for _, group := range groups {
		if err := featsDB.StoreGroupFeatures(group.Features()); err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorFeaturesFailed)
		}
	}
	log.Info().
		Int("numTraces", len(rows)).
		Int("numGroups", len(groups)).
		Str("groupBy", groupBy).
		Msg("stored feature vectors")

	if csvPath != "" {
		fw, err := os.Create(csvPath)
		if err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorFeaturesFailed)
		}
		defer fw.Close()
		if err := embops.WriteCSV(fw, feats); err != nil {
			color.New(errColor).Fprintln(os.Stderr, err)
			os.Exit(exitErrorFeaturesFailed)
		}
		log.Info().Str("path", csvPath).Msg("exported feature table")
	}
}

func runServer(conf *cnf.Conf, version VersionInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	db := openStatsDB(conf)
	featsDB := openFeatsDB(conf)
	defer featsDB.Close()
	apiserver.Run(ctx, conf, db, featsDB, version)
}
