package cmd

import (
	"github.com/huangsam/tally/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Tally MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents build series via standard tools.

The root flags and config file supply defaults; every tool call may override the
series settings for that call only.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
