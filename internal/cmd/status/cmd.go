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

package status

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ragstack/aca-rollout/pkg/platform/azure"
)

// NewCmd create the new "status" subcommand
func NewCmd() *cobra.Command {
	var subscriptionID string

	statusCmd := &cobra.Command{
		Use:   "status [resource-group] [application]",
		Short: "Show the revisions and the traffic split of a Container App",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if subscriptionID == "" {
				subscriptionID = os.Getenv("AZURE_SUBSCRIPTION_ID")
			}
			if subscriptionID == "" {
				return fmt.Errorf("no subscription selected: pass --subscription or set AZURE_SUBSCRIPTION_ID")
			}

			client, err := azure.NewClient(subscriptionID)
			if err != nil {
				return err
			}

			return Status(cmd.Context(), client, args[0], args[1])
		},
	}

	statusCmd.Flags().StringVar(&subscriptionID, "subscription", "",
		"the Azure subscription holding the application (defaults to AZURE_SUBSCRIPTION_ID)")

	return statusCmd
}
