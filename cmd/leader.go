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

var leaderOpts flowOptions

var leaderCmd = &cobra.Command{
	Use:   "leader",
	Short: "Generate the module breakdown design",
	Long: `Generate requirement_leader.md, the module breakdown design that the
design flow builds on.

Several breakdown candidates are drafted on rotating writer models, every
reviewer model scores each candidate, and the best one is optimized into the
final document using the merged review feedback.

Example:
  docsmith leader -d ./myproject`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(internal.RunLeader, leaderOpts, func(ctx context.Context, p *pipeline.Pipeline) error {
			return p.Leader(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(leaderCmd)
	addFlowFlags(leaderCmd, &leaderOpts)
}
