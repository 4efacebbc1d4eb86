// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command dealfinder is the CLI for the food and deal assistant.
//
// Usage:
//
//	dealfinder seed --config configs/dealfinder.yaml
//	dealfinder ask --example complex --verbose
//	dealfinder ask "What is the promo code for Thai Basil House?"
//	dealfinder chat
//	dealfinder serve --port 8080
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/dealfinder"
	"github.com/kadirpekel/dealfinder/pkg/config"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Ask      AskCmd      `cmd:"" help:"Answer a single question and exit."`
	Chat     ChatCmd     `cmd:"" help:"Start an interactive chat session."`
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP API server."`
	Seed     SeedCmd     `cmd:"" help:"Load the demo dataset into the graph and vector stores."`
	Tools    ToolsCmd    `cmd:"" help:"List the tools available to the agent."`
	Validate ValidateCmd `cmd:"" help:"Validate configuration file."`
	Schema   SchemaCmd   `cmd:"" help:"Print the JSON Schema of the configuration file."`

	Config    string `short:"c" help:"Path to config file (built-in defaults when empty)." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)."`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple, verbose, json)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(dealfinder.GetVersion())
	return nil
}

func main() {
	_ = config.LoadDotEnv()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("dealfinder"),
		kong.Description("A ReAct agent that finds dishes and the deals your membership unlocks."),
		kong.UsageOnError(),
	)

	// Config file logger settings are applied after loading, unless
	// flags or environment variables already chose them.
	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
