/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "Multi-Agent Design Document Pipeline",
	Long: `A CLI application that drives several LLM agents (via an OpenCode server)
to collaboratively write, review, and refine engineering design documents.

Flows:
  check    audit the requirement documents for gaps and ambiguity
  leader   produce the module breakdown design from the requirements
  design   produce the overall and per-module design documents

Each flow drafts with rotating writer models, collects structured verdicts
from reviewer models, and optimizes under a bounded call budget. Every agent
call is journaled; use "docsmith runs" to inspect past runs.

Use "docsmith design --help" for pipeline options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
