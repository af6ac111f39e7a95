package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/erwinvaneijk/fbhash/internals"
)

// QueryCommand defines the CLI command parameters
type QueryCommand struct {
	Files        []string `json:"files"`
	StatePath    string   `json:"state"`
	DatabasePath string   `json:"database"`
	Binary       bool     `json:"binary"`
	Quiet        bool     `json:"quiet"`
	Number       int      `json:"number"`
	ConfigOutput bool     `json:"config"`
	JSONOutput   bool     `json:"json"`
}

// CLIQueryCommand defines the CLI arguments as kingpin requires them
type CLIQueryCommand struct {
	cmd          *kingpin.CmdClause
	Files        *[]string
	StatePath    *string
	DatabasePath *string
	Quiet        *bool
	Number       *int
	ConfigOutput *bool
}

func newCLIQueryCommand(app *kingpin.Application) *CLIQueryCommand {
	c := new(CLIQueryCommand)
	c.cmd = app.Command("query", "Score one or more files against a previously indexed corpus.")

	c.Files = c.cmd.Arg("file", "file to query").Required().Strings()
	c.StatePath = c.cmd.Flag("state", "state file path").Short('s').Default(envOr("FBHASH_STATE", "state.json")).String()
	c.DatabasePath = c.cmd.Flag("database", "database file path").Short('d').Default(envOr("FBHASH_DATABASE", "database.json")).String()
	c.Quiet = c.cmd.Flag("quiet", "suppress phase progress lines").Bool()
	c.Number = c.cmd.Flag("number", "number of top matches to return").Short('n').Default("5").Int()
	c.ConfigOutput = c.cmd.Flag("config", "only prints the configuration and terminates").Bool()

	return c
}

// Validate turns the parsed flags into a plain QueryCommand, applying
// environment-variable overrides and defaults not expressible via kingpin
// alone.
func (c *CLIQueryCommand) Validate() (*QueryCommand, error) {
	if len(*c.Files) == 0 {
		return nil, fmt.Errorf("at least one file must be given")
	}

	cmd := new(QueryCommand)
	cmd.Files = *c.Files
	cmd.StatePath = *c.StatePath
	cmd.DatabasePath = *c.DatabasePath
	cmd.Quiet = *c.Quiet
	cmd.Number = *c.Number
	cmd.ConfigOutput = *c.ConfigOutput

	cmd.Binary = argBinaryOutput
	cmd.JSONOutput = argJSONOutput
	if cmd.Binary && cmd.JSONOutput {
		return nil, fmt.Errorf("cannot accept --json and --binary simultaneously")
	}

	if envQuiet, err := envToBool("FBHASH_QUIET"); err == nil {
		cmd.Quiet = envQuiet
	}
	if envN, ok := envToInt("FBHASH_NUMBER"); ok {
		cmd.Number = envN
	}
	if cmd.Number <= 0 {
		return nil, fmt.Errorf("expected --number to be positive integer, is %d", cmd.Number)
	}

	return cmd, nil
}

func (c *QueryCommand) format() internals.OutputFormat {
	if c.Binary {
		return internals.FormatBinary
	}
	return internals.FormatText
}

// Run executes the query command: load the corpus model and database,
// score every requested file against it, and print ranked matches in
// ascending-distance order (best match first, spec §4.7 step 5). It writes
// results to Output w and diagnostics to log, returning an
// (exit code, error) pair.
func (c *QueryCommand) Run(w Output, log Output) (int, error) {
	if c.ConfigOutput {
		b, err := json.Marshal(c)
		if err != nil {
			return 6, fmt.Errorf(configJSONErrMsg, err)
		}
		w.Println(string(b))
		return 0, nil
	}

	dc, docs, err := internals.LoadCorpus(c.StatePath, c.DatabasePath, c.format())
	if err != nil {
		return 6, err
	}

	results, errs := internals.QueryFiles(dc, docs, c.Files, c.Number)

	worstExit := 0
	for i, path := range c.Files {
		if errs[i] != nil {
			log.Printfln("query of %s failed: %s", path, errs[i])
			if worstExit < 8 {
				worstExit = 8
			}
			continue
		}

		matches := internals.SortedMatches(results[i].Matches)

		if c.JSONOutput {
			type jsonMatch struct {
				File     string  `json:"file"`
				Distance float64 `json:"distance"`
			}
			type jsonResult struct {
				File    string      `json:"file"`
				Results int         `json:"results"`
				Matches []jsonMatch `json:"matches"`
			}
			data := jsonResult{File: path, Results: len(matches)}
			for _, m := range matches {
				data.Matches = append(data.Matches, jsonMatch{File: m.Document.File, Distance: m.Distance})
			}
			jsonRepr, err := json.Marshal(&data)
			if err != nil {
				return 6, fmt.Errorf(resultJSONErrMsg, err)
			}
			w.Println(string(jsonRepr))
		} else {
			w.Printfln("Similarities for %s", path)
			w.Printfln("Results: %d", len(matches))
			for _, m := range matches {
				w.Printfln("%s => (%g) %s", path, m.Distance, m.Document.File)
			}
		}
	}

	return worstExit, nil
}
