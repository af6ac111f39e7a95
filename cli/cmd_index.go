package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/erwinvaneijk/fbhash/internals"
)

// IndexCommand defines the CLI command parameters
type IndexCommand struct {
	Paths        []string `json:"paths"`
	StatePath    string   `json:"state"`
	DatabasePath string   `json:"database"`
	Binary       bool     `json:"binary"`
	Quiet        bool     `json:"quiet"`
	Workers      int      `json:"workers"`
	ConfigOutput bool     `json:"config"`
	JSONOutput   bool     `json:"json"`
}

// CLIIndexCommand defines the CLI arguments as kingpin requires them
type CLIIndexCommand struct {
	cmd          *kingpin.CmdClause
	Paths        *[]string
	StatePath    *string
	DatabasePath *string
	Quiet        *bool
	Workers      *int
	ConfigOutput *bool
}

func newCLIIndexCommand(app *kingpin.Application) *CLIIndexCommand {
	c := new(CLIIndexCommand)
	c.cmd = app.Command("index", "Scan one or more directory trees and persist a corpus model and document database.")

	c.Paths = c.cmd.Arg("path", "directory or file to index").Required().Strings()
	c.StatePath = c.cmd.Flag("state", "state file path").Short('s').Default(envOr("FBHASH_STATE", "state.json")).String()
	c.DatabasePath = c.cmd.Flag("database", "database file path").Short('d').Default(envOr("FBHASH_DATABASE", "database.json")).String()
	c.Quiet = c.cmd.Flag("quiet", "suppress phase progress lines").Bool()
	c.Workers = c.cmd.Flag("workers", "number of concurrent hashing workers").Int()
	c.ConfigOutput = c.cmd.Flag("config", "only prints the configuration and terminates").Bool()

	return c
}

// Validate turns the parsed flags into a plain IndexCommand, applying
// environment-variable overrides and defaults not expressible via kingpin
// alone.
func (c *CLIIndexCommand) Validate() (*IndexCommand, error) {
	if len(*c.Paths) == 0 {
		return nil, fmt.Errorf("at least one path must be given")
	}

	cmd := new(IndexCommand)
	cmd.Paths = *c.Paths
	cmd.StatePath = *c.StatePath
	cmd.DatabasePath = *c.DatabasePath
	cmd.Quiet = *c.Quiet
	cmd.Workers = *c.Workers
	cmd.ConfigOutput = *c.ConfigOutput

	cmd.Binary = argBinaryOutput
	cmd.JSONOutput = argJSONOutput
	if cmd.Binary && cmd.JSONOutput {
		return nil, fmt.Errorf("cannot accept --json and --binary simultaneously")
	}

	if envQuiet, err := envToBool("FBHASH_QUIET"); err == nil {
		cmd.Quiet = envQuiet
	}
	if cmd.Workers == 0 {
		if wv, ok := envToInt("FBHASH_WORKERS"); ok {
			cmd.Workers = wv
		} else {
			cmd.Workers = countCPUs()
		}
	}
	if cmd.Workers <= 0 {
		return nil, fmt.Errorf("expected --workers to be positive integer, is %d", cmd.Workers)
	}

	return cmd, nil
}

func (c *IndexCommand) format() internals.OutputFormat {
	if c.Binary {
		return internals.FormatBinary
	}
	return internals.FormatText
}

// Run executes the index command: enumerate, hash, merge, persist state,
// finalize digests, persist database. It writes the result to Output w
// and diagnostics to log, returning an (exit code, error) pair.
func (c *IndexCommand) Run(w Output, log Output) (int, error) {
	if c.ConfigOutput {
		b, err := json.Marshal(c)
		if err != nil {
			return 6, fmt.Errorf(configJSONErrMsg, err)
		}
		w.Println(string(b))
		return 0, nil
	}

	showProgress := !c.Quiet && isatty.IsTerminal(os.Stdout.Fd())

	opts := internals.IndexOptions{
		Roots:        c.Paths,
		StatePath:    c.StatePath,
		DatabasePath: c.DatabasePath,
		Format:       c.format(),
		Workers:      c.Workers,
		OnFileError: func(path string, err error) {
			log.Printfln("skipping %s: %s", path, err)
		},
	}
	if !c.Quiet {
		opts.OnWalkStatistics = func(stats internals.WalkStatistics) {
			w.Printfln("found %s files totaling %s, skipped %s",
				humanize.Comma(int64(stats.Files)),
				humanize.Bytes(stats.TotalBytes),
				humanize.Comma(int64(stats.Skipped)))
		}
	}
	if showProgress {
		opts.OnPhase = func(phase, total int, label string) {
			w.Printfln("[%d/%d] %s", phase, total, label)
		}
	}

	dc, _, err := internals.IndexPaths(opts)
	if err != nil {
		return 6, err
	}
	fileCount := dc.NumberOfFiles()

	if c.JSONOutput {
		type jsonResult struct {
			Files     int    `json:"files"`
			Chunks    int    `json:"distinct-chunks"`
			StateFile string `json:"state-file"`
			Database  string `json:"database-file"`
		}
		data := jsonResult{Files: fileCount, Chunks: dc.NumberOfChunks(), StateFile: c.StatePath, Database: c.DatabasePath}
		jsonRepr, err := json.Marshal(&data)
		if err != nil {
			return 6, fmt.Errorf(resultJSONErrMsg, err)
		}
		w.Println(string(jsonRepr))
	} else {
		w.Printfln("indexed %s across %s distinct chunks", humanize.Comma(int64(fileCount)), humanize.Comma(int64(dc.NumberOfChunks())))
	}

	return 0, nil
}
