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

package rollout

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ragstack/aca-rollout/pkg/platform/azure"
	"github.com/ragstack/aca-rollout/pkg/rollout"
)

// NewCmd creates the root command driving a rollout
func NewCmd() *cobra.Command {
	var (
		subscriptionID  string
		canaryLabel     string
		dryRun          bool
		propagationWait time.Duration
		probeAttempts   int
		warmupTimeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "aca-rollout [resource-group] [application]",
		Short: "Progressively shift traffic to the latest revision of a Container App",
		Long: "Discovers the most recently created revision of the application and " +
			"promotes it in stages (smoke at 0%, 10%, 50%, 100%), verifying health " +
			"and warmup at every stage. Any stage failure restores all traffic to " +
			"the previously stable revision.",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceGroup := args[0]
			appName := args[1]

			if subscriptionID == "" {
				subscriptionID = os.Getenv("AZURE_SUBSCRIPTION_ID")
			}
			if subscriptionID == "" {
				return fmt.Errorf("no subscription selected: pass --subscription or set AZURE_SUBSCRIPTION_ID")
			}

			settings := rollout.DefaultSettings()
			settings.CanaryLabel = canaryLabel
			if cmd.Flags().Changed("propagation-wait") {
				settings.PropagationWait = propagationWait
			}
			if cmd.Flags().Changed("probe-attempts") {
				settings.HealthAttempts = probeAttempts
			}
			if cmd.Flags().Changed("warmup-timeout") {
				settings.WarmupTimeout = warmupTimeout
			}

			client, err := azure.NewClient(subscriptionID)
			if err != nil {
				return err
			}

			return Run(cmd.Context(), client, resourceGroup, appName, settings, dryRun)
		},
	}

	cmd.Flags().StringVar(&subscriptionID, "subscription", "",
		"the Azure subscription holding the application (defaults to AZURE_SUBSCRIPTION_ID)")
	cmd.Flags().StringVar(&canaryLabel, "canary-label", "canary",
		"the label attached to the revision under rollout")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"resolve revisions and print the planned stages without touching traffic")
	cmd.Flags().DurationVar(&propagationWait, "propagation-wait", rollout.DefaultSettings().PropagationWait,
		"the pause after each traffic change before probing")
	cmd.Flags().IntVar(&probeAttempts, "probe-attempts", rollout.DefaultSettings().HealthAttempts,
		"the attempt budget of every health check")
	cmd.Flags().DurationVar(&warmupTimeout, "warmup-timeout", rollout.DefaultSettings().WarmupTimeout,
		"the per-attempt timeout of the warmup check")

	return cmd
}
