// =============================================================================
// Startup Funding Dashboard - Main Entry Point
// =============================================================================
//
// USAGE:
//   funding summary   - Print the dashboard views for a selection
//   funding export    - Write the dashboard to an XLSX or JSON file
//   funding serve     - Serve the dashboard API over HTTP
//   funding validate  - Check configuration and dataset rows
//   funding version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : ingestion, filtering, aggregation, reports, server
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/funding-dashboard/cmd"
)

func main() {
	cmd.Execute()
}
