package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"
)

var app *kingpin.Application
var index *CLIIndexCommand
var query *CLIQueryCommand

// errorResponse is the shape printed for a top-level parse error.
type errorResponse struct {
	ErrorMessage string `json:"error"`
	ExitCode     int    `json:"-"`
}

func (e *errorResponse) Print() int {
	if jsonOutput() {
		fmt.Fprintf(os.Stderr, "%s\n", e.JSON())
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", e.String())
	}
	return e.ExitCode
}

func (e *errorResponse) String() string {
	return `cli: error: ` + e.ErrorMessage
}

func (e *errorResponse) JSON() string {
	jsonBytes, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON marshalling error: %s", err)
		return ""
	}
	return string(jsonBytes)
}

func init() {
	app = kingpin.New("fbhash", "Find near-duplicate files by TF-IDF similarity over rolling content chunks.")
	app.Version("1.0.0")
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)

	app.Flag("json", "use JSON for output (state and database files keep the textual encoding: YAML state, line-delimited JSON database)").BoolVar(&argJSONOutput)
	app.Flag("binary", "use a compact binary encoding for the state and database files").BoolVar(&argBinaryOutput)

	index = newCLIIndexCommand(app)
	query = newCLIQueryCommand(app)

	w = &PlainOutput{Device: os.Stdout}
	log = &PlainOutput{Device: os.Stderr}
}

func cli() int {
	subcommand, err := app.Parse(os.Args[1:])
	if err != nil {
		resp := &errorResponse{err.Error(), 1}
		return resp.Print()
	}

	switch subcommand {
	case index.cmd.FullCommand():
		settings, err := index.Validate()
		if err != nil {
			kingpin.FatalUsage(err.Error())
		}
		code, runErr := settings.Run(w, log)
		if runErr != nil {
			return handleError(runErr.Error(), code, settings.JSONOutput)
		}
		return code

	case query.cmd.FullCommand():
		settings, err := query.Validate()
		if err != nil {
			kingpin.FatalUsage(err.Error())
		}
		code, runErr := settings.Run(w, log)
		if runErr != nil {
			return handleError(runErr.Error(), code, settings.JSONOutput)
		}
		return code

	default:
		kingpin.FatalUsage("unknown command")
	}

	return 0
}

func main() {
	exitcode := cli()
	os.Exit(exitcode)
}
