package cmd

import (
	"runtime"

	"github.com/huangsam/tally/internal/iocache"
	"github.com/spf13/cobra"
)

// versionCmd prints build details plus the run store schema this binary migrates to.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tally version and build details.",
	Long: `Print the tally release, the commit and time it was built from,
the Go runtime and target platform, and the run store schema version
that 'tally runs migrate' brings a database up to.

Include this output when reporting a series that renders differently
between two installations.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("tally %s\n", version)
		cmd.Printf("  Commit:     %s\n", commit)
		cmd.Printf("  Built:      %s\n", date)
		cmd.Printf("  Runtime:    %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  Run schema: v%d\n", iocache.LatestRunSchemaVersion)
	},
}
