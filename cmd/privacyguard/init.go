package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacyguard/internal/config"
)

//go:embed templates/privacyguard.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a PrivacyGuard configuration file",
		Long: `Init writes a commented .privacyguard configuration file.

The generated file documents every option: probe timeout, SOCKS5 proxy,
browser signals file, echo and STUN servers, history retention and the
default report format.

Examples:
  # Create .privacyguard in the current directory
  privacyguard init

  # Create the file in the XDG config directory
  privacyguard init --xdg

  # Create config file at a specific path
  privacyguard init -o myconfig.yaml

  # Force overwrite existing file
  privacyguard init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().Bool("xdg", false,
		"Write config.yaml to the XDG config directory instead of --output")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	useXDG, err := cmd.Flags().GetBool("xdg")
	if err != nil {
		return err
	}
	if useXDG {
		outputPath = filepath.Join(config.XDGConfigDir(), "config.yaml")
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/privacyguard.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - A SOCKS5 proxy for the network probes")
	fmt.Fprintln(out, "  - The browser signals file for fingerprint checks")
	fmt.Fprintln(out, "  - History retention and the default report format")

	return nil
}
