/*
Copyright The ACA Rollout Contributors

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

/*
The aca-rollout command progressively shifts the traffic of an Azure
Container App to its latest revision, rolling back on any failure.
*/
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ragstack/aca-rollout/internal/cmd/rollout"
	"github.com/ragstack/aca-rollout/internal/cmd/status"
	"github.com/ragstack/aca-rollout/internal/cmd/versions"
	"github.com/ragstack/aca-rollout/pkg/log"
)

func main() {
	logFlags := &log.Flags{}

	rootCmd := rollout.NewCmd()
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logFlags.ConfigureLogging()
	}
	logFlags.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(status.NewCmd())
	rootCmd.AddCommand(versions.NewCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
