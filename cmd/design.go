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

var designOpts flowOptions

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Generate the overall and per-module design documents",
	Long: `Generate the full design document set from the requirement documents
and the module breakdown design (requirement_leader.md, produced by
"docsmith leader").

Steps:
  1. Draft several overall-design candidates on rotating writer models
  2. Have every reviewer model score every candidate
  3. Optimize the best candidate into design_overall.md
  4. Extract the module list and draft one design_module_<name>.md each
  5. Review and optimize each module document under a call budget
  6. Align cross-module interfaces over several rounds
  7. Review and optimize the whole document set under a call budget

Requires an OpenCode server ("opencode serve") with workspace access to the
working directory; the agents write the documents themselves.

Example:
  docsmith design -d ./myproject -c agents_config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlow(internal.RunDesign, designOpts, func(ctx context.Context, p *pipeline.Pipeline) error {
			return p.Design(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(designCmd)
	addFlowFlags(designCmd, &designOpts)
}
