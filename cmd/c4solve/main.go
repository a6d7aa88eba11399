// Command c4solve exposes the two entry points of the Connect-Four solver:
// evaluating a single position and generating an early-game database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hailam/c4solve/internal/board"
	"github.com/hailam/c4solve/internal/database"
	"github.com/hailam/c4solve/internal/engine"
	"github.com/hailam/c4solve/internal/history"
)

var (
	mode       = flag.String("mode", "eval", "process interface to run: eval | gendb")
	boardPath  = flag.String("board", "", "path to a board-text file (eval mode); empty means the start position")
	depth      = flag.Int("depth", 8, "database generation depth (gendb mode)")
	numWorkers = flag.Int("workers", engine.DefaultNumWorkerThreads, "helper/generator worker count")
	dbDir      = flag.String("dbdir", ".", "directory the two .bin database files are read from/written to")
	historyDir = flag.String("history", "", "badger directory for run-history recording; empty uses the platform data directory, \"off\" disables it")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", *cpuprofile)
	}

	switch *mode {
	case "eval":
		runEval()
	case "gendb":
		runGenDB()
	default:
		log.Fatalf("unknown -mode %q, want eval or gendb", *mode)
	}
}

func runEval() {
	state, err := loadBoard(*boardPath)
	if err != nil {
		log.Fatalf("loading board: %v", err)
	}

	eng := engine.NewEngine(*numWorkers)
	result, err := eng.Solve(state)
	if err != nil {
		log.Fatalf("solve failed: %v", err)
	}

	fmt.Printf("Eval: %d\nMoves: %v\nNodes: %s\nElapsed: %s\n",
		result.Eval, result.Moves, humanize.Comma(int64(result.Nodes)), result.Elapsed)

	if *historyDir != "off" {
		rec := history.SolveRecord{
			Fingerprint: state.Fingerprint(),
			Mode:        history.ModeEvaluate,
			Eval:        result.Eval,
			Moves:       result.Moves,
			Nodes:       result.Nodes,
			Workers:     *numWorkers,
			Elapsed:     result.Elapsed,
		}
		if err := recordHistory(rec); err != nil {
			log.Printf("run-history recording failed: %v", err)
		}
	}
}

func runGenDB() {
	log.Printf("generating database at depth %d with %d workers", *depth, *numWorkers)

	start := time.Now()
	nodes, err := database.GenerateDatabase(*dbDir, *depth, *numWorkers)
	if err != nil {
		log.Fatalf("generate database failed: %v", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %s\nElapsed: %s\n", humanize.Comma(int64(nodes)), elapsed)

	if *historyDir != "off" {
		rec := history.SolveRecord{
			Fingerprint: board.NewState().Fingerprint(),
			Mode:        history.ModeGenerateDatabase,
			Nodes:       nodes,
			Workers:     *numWorkers,
		}
		if err := recordHistory(rec); err != nil {
			log.Printf("run-history recording failed: %v", err)
		}
	}
}

// loadBoard reads a board-text file (7 lines of 7 characters, top row
// first) or returns the start position if path is empty.
func loadBoard(path string) (board.State, error) {
	if path == "" {
		return board.NewState(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return board.State{}, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return board.DecodeBoardText(lines)
}

func recordHistory(rec history.SolveRecord) error {
	var store *history.Store
	var err error
	if *historyDir == "" {
		store, err = history.OpenDefault()
	} else {
		store, err = history.Open(*historyDir)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(rec, time.Now())
}
