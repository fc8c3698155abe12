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

// Package versions contains the build information of aca-rollout
package versions

// Filled at build time through -ldflags
var (
	// Version is the released version
	Version = "dev"

	// BuildCommit is the git commit the binary was built from
	BuildCommit = "none"

	// BuildDate is the date the binary was built
	BuildDate = "unknown"
)

// Info collects the build information
type Info struct {
	Version string
	Commit  string
	Date    string
}

// GetInfo returns the build information of the running binary
func GetInfo() Info {
	return Info{
		Version: Version,
		Commit:  BuildCommit,
		Date:    BuildDate,
	}
}
