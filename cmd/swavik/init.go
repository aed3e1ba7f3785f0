// ABOUTME: The init command: interactive setup that writes a swavik config file
// ABOUTME: Prompts with defaults, so pressing Enter throughout yields a working local config

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/2389/swavik-portal/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runInit(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "swavik configuration setup")
	fmt.Fprintln(out, "==========================")
	fmt.Fprintln(out)

	defaultConfigPath, _ := config.ResolvePath("")
	outputFile := prompt(reader, out, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		if !yes(prompt(reader, out, "File exists. Overwrite?", "no")) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.Default()

	fmt.Fprintln(out, "\n--- Backend ---")
	cfg.App.Name = prompt(reader, out, "Application name", cfg.App.Name)
	cfg.Backend.BaseURL = prompt(reader, out, "Backend URL", cfg.Backend.BaseURL)
	cfg.Backend.RequestTimeoutRaw = prompt(reader, out, "Request timeout (0s for none)", cfg.Backend.RequestTimeoutRaw)

	fmt.Fprintln(out, "\n--- Storage ---")
	cfg.Storage.Path = prompt(reader, out, "SQLite database path", cfg.Storage.Path)

	fmt.Fprintln(out, "\n--- Sessions ---")
	cfg.Auth.SessionTTLRaw = prompt(reader, out, "Session lifetime", cfg.Auth.SessionTTLRaw)

	fmt.Fprintln(out, "\n--- Export ---")
	cfg.Export.Dir = prompt(reader, out, "Export directory", cfg.Export.Dir)
	cfg.Export.Format = prompt(reader, out, "Export format (text/html)", cfg.Export.Format)

	fmt.Fprintln(out, "\n--- Logging ---")
	cfg.Logging.Level = prompt(reader, out, "Log level (debug/info/warn/error)", cfg.Logging.Level)
	cfg.Logging.Format = prompt(reader, out, "Log format (text/json)", cfg.Logging.Format)

	if err := cfg.Resolve(); err != nil {
		return err
	}

	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# swavik configuration\n")
	buf.WriteString("# Generated by swavik init\n\n")
	buf.Write(body)

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(cfg.Storage.Path)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Fprintf(out, "\nConfig written to %s\n", outputFile)
	fmt.Fprintf(out, "Data directory: %s\n", dataDir)
	fmt.Fprintln(out, "\nNext:")
	fmt.Fprintln(out, "  swavik signup <username>")
	fmt.Fprintln(out, "  swavik chat")
	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}

	input, err := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Fprintln(out)
		return defaultVal
	}

	if input == "" {
		return defaultVal
	}
	return input
}

func yes(answer string) bool {
	answer = strings.ToLower(answer)
	return answer == "yes" || answer == "y"
}
