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
	"context"

	"github.com/spf13/cobra"

	"github.com/valpere/docsmith/internal"
	"github.com/valpere/docsmith/internal/pipeline"
)

var checkOpts flowOptions

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Audit the requirement documents",
	Long: `Audit the documents under requirement/ for gaps, ambiguity, and missing
data provenance before any design work starts.

Several independent audit passes run on rotating writer models, each saving
its own findings report; a final consolidation call merges them into
requirement_insufficient.md.

Example:
  docsmith check -d ./myproject`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(internal.RunCheck, checkOpts, func(ctx context.Context, p *pipeline.Pipeline) error {
			return p.Check(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addFlowFlags(checkCmd, &checkOpts)
}
