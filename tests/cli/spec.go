package tests

import (
	"gopkg.in/yaml.v2"
)

const indexQueryYAML = `
expected:
  - name: 'index with no paths fails usage'
    args: ['index', '--state', 'state.json', '--database', 'database.json']
    exitcode: 1
  - name: 'query with no files fails usage'
    args: ['query', '--state', 'state.json', '--database', 'database.json']
    exitcode: 1
`

type YAMLInputStreamSpec struct {
	Is string `yaml:"is"`
}

type YAMLOutputStreamSpec struct {
	Is       string   `yaml:"is"`
	Contains string   `yaml:"contains"`
	Apply    []string `yaml:"apply"`
}

type YAMLRuntimeSpec struct {
	Max float64
}

type YAMLTestSpec struct {
	Name     string               `yaml:"name"`
	Args     []string             `yaml:"args"`
	Env      map[string]string    `yaml:"env"`
	Stdin    YAMLInputStreamSpec  `yaml:"stdin"`
	Stdout   YAMLOutputStreamSpec `yaml:"stdout"`
	Stderr   YAMLOutputStreamSpec `yaml:"stderr"`
	Runtime  YAMLRuntimeSpec      `yaml:"runtime"`
	ExitCode int                  `yaml:"exitcode"`
}

type YAMLTestsSpec struct {
	Executable string         `yaml:"executable"`
	Expected   []YAMLTestSpec `yaml:"expected"`
}

func parseYAMLTestSpec(src []byte, dst *YAMLTestsSpec) error {
	return yaml.Unmarshal(src, dst)
}
