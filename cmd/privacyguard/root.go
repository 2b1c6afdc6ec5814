package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for PrivacyGuard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "privacyguard",
		Short: "Audit how much your connection and browser reveal about you",
		Long: `PrivacyGuard checks six privacy categories and combines them into a
security score from 0 to 100:

  IP privacy              public address exposure and consistency (20%)
  WebRTC protection       local and public addresses leaked through ICE (20%)
  DNS privacy             which resolvers answer for you (15%)
  IPv6 protection         IPv6 traffic that bypasses your tunnel (10%)
  Fingerprint resistance  canvas, WebGL, audio and font entropy (20%)
  Browser hardening       tracking-related browser settings (15%)

Network probes run from this machine, optionally through a SOCKS5 proxy.
Fingerprint and browser signals are imported from a JSON file exported by
the browser under test (--signals).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewDetectCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
