// Package commands implements the uactl subcommand tree.
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverAddr is the OPC UA server address (host:port) to dial.
	serverAddr string

	// dialTimeout bounds how long commands wait for the TCP connection
	// and handshake to complete.
	dialTimeout time.Duration
)

// rootCmd is the top-level cobra command for uactl.
var rootCmd = &cobra.Command{
	Use:   "uactl",
	Short: "CLI client for the OPC UA server",
	Long: "uactl drives the OPC UA TCP chunk transport directly: Hello/Acknowledge\n" +
		"handshakes and OpenSecureChannel/CloseSecureChannel exchanges. It does not\n" +
		"decode service messages above the chunk boundary.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "localhost:4840",
		"OPC UA server address (host:port)")
	rootCmd.PersistentFlags().DurationVar(&dialTimeout, "timeout", 5*time.Second,
		"dial and handshake timeout")

	rootCmd.AddCommand(connectCmd())
	rootCmd.AddCommand(openChannelCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(shellCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
