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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/cnf"
)

const (
	actionImport   = "import"
	actionMine     = "mine"
	actionResume   = "resume"
	actionFeatures = "features"
	actionServer   = "server"
	actionVersion  = "version"
	actionHelp     = "help"

	exitErrorGeneralFailure = iota
	exitErrorImportFailed
	exitErrorMiningFailed
	exitErrorFeaturesFailed
)

var (
	version   string
	buildDate string
	gitCommit string
)

// VersionInfo provides a detailed information about the actual build
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

func topLevelUsage() {
	fmt.Fprintf(os.Stderr, "THREATTRACE - a syscall trace abstraction and pattern mining tool\n")
	fmt.Fprintf(os.Stderr, "-----------------------------\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tshow version info\n", actionVersion)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\timport a JSONL trace corpus\n", actionImport)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tcompact traces and mine frequent sequences\n", actionMine)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\tresume an interrupted compaction run\n", actionResume)
	fmt.Fprintf(os.Stderr, "\t%s\t\tcompute embedding-based feature vectors\n", actionFeatures)
	fmt.Fprintf(os.Stderr, "\t%s\t\t\trun the HTTP API server\n", actionServer)
	fmt.Fprintf(os.Stderr, "\nUse `threattrace help ACTION` for information about a specific action\n\n")
}

func setup(confPath string) *cnf.Conf {
	conf := cnf.LoadConfig(confPath)
	if conf.Logging.Level == "" {
		conf.Logging.Level = "info"
	}
	logging.SetupLogging(conf.Logging)
	cnf.ValidateAndDefaults(conf)
	return conf
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

func runActionVersion(ver VersionInfo) {
	fmt.Fprintln(os.Stderr, "ThreatTrace version: ", ver)
}

func main() {
	version := VersionInfo{
		Version:   cleanVersionInfo(version),
		BuildDate: cleanVersionInfo(buildDate),
		GitCommit: cleanVersionInfo(gitCommit),
	}

	cmdImport := flag.NewFlagSet(actionImport, flag.ExitOnError)
	importTrainingExclude := cmdImport.Bool(
		"training-exclude", false,
		"if set, imported traces are flagged as excluded from downstream model training")
	cmdImport.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] config.json corpus.jsonl\n",
			filepath.Base(os.Args[0]), actionImport)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdImport.PrintDefaults()
	}

	cmdMine := flag.NewFlagSet(actionMine, flag.ExitOnError)
	cmdMine.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s config.json\n",
			filepath.Base(os.Args[0]), actionMine)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdMine.PrintDefaults()
	}

	cmdResume := flag.NewFlagSet(actionResume, flag.ExitOnError)
	cmdResume.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s config.json\n",
			filepath.Base(os.Args[0]), actionResume)
	}

	cmdFeatures := flag.NewFlagSet(actionFeatures, flag.ExitOnError)
	featuresGroupBy := cmdFeatures.String(
		"group-by", "window",
		"grouping key for group-level feature vectors (window, process, label)")
	featuresCSVPath := cmdFeatures.String(
		"csv", "",
		"if set, the resulting feature table is also exported as CSV to the provided path")
	cmdFeatures.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s [options] config.json\n",
			filepath.Base(os.Args[0]), actionFeatures)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmdFeatures.PrintDefaults()
	}

	cmdServer := flag.NewFlagSet(actionServer, flag.ExitOnError)
	cmdServer.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\t%s %s config.json\n",
			filepath.Base(os.Args[0]), actionServer)
	}

	cmdVersion := flag.NewFlagSet(actionVersion, flag.ExitOnError)
	cmdVersion.Usage = func() {
		cmdVersion.PrintDefaults()
	}

	cmdHelp := flag.NewFlagSet(actionHelp, flag.ExitOnError)
	cmdHelp.Usage = func() {
		cmdHelp.PrintDefaults()
	}

	action := actionHelp
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	switch action {
	case actionHelp:
		var subj string
		if len(os.Args) > 2 {
			cmdHelp.Parse(os.Args[2:])
			subj = cmdHelp.Arg(0)
		}
		if subj == "" {
			topLevelUsage()
			return
		}
		switch subj {
		case actionImport:
			cmdImport.PrintDefaults()
		case actionMine:
			cmdMine.PrintDefaults()
		case actionResume:
			cmdResume.PrintDefaults()
		case actionFeatures:
			cmdFeatures.PrintDefaults()
		case actionServer:
			cmdServer.PrintDefaults()
		}
	case actionVersion:
		cmdVersion.Parse(os.Args[2:])
		runActionVersion(version)
	case actionImport:
		cmdImport.Parse(os.Args[2:])
		conf := setup(cmdImport.Arg(0))
		runImport(conf, cmdImport.Arg(1), *importTrainingExclude)
	case actionMine:
		cmdMine.Parse(os.Args[2:])
		conf := setup(cmdMine.Arg(0))
		runMine(conf)
	case actionResume:
		cmdResume.Parse(os.Args[2:])
		conf := setup(cmdResume.Arg(0))
		runResume(conf)
	case actionFeatures:
		cmdFeatures.Parse(os.Args[2:])
		conf := setup(cmdFeatures.Arg(0))
		runFeatures(conf, *featuresGroupBy, *featuresCSVPath)
	case actionServer:
		cmdServer.Parse(os.Args[2:])
		conf := setup(cmdServer.Arg(0))
		runServer(conf, version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown action, please use 'help' to get more information")
	}
}
