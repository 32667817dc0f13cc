package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sfcc/internal/version"
)

type versionPayload struct {
	Tool      string            `json:"tool"`
	Version   string            `json:"version"`
	GitCommit string            `json:"git_commit,omitempty"`
	BuildDate string            `json:"build_date,omitempty"`
	Modules   map[string]string `json:"modules"`
}

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show sfcc build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(versionFormat) {
		case "pretty":
			colored := isTerminal(os.Stdout)
			if mode, err := cmd.Root().PersistentFlags().GetString("color"); err == nil && mode != "auto" {
				colored = mode == "on"
			}
			color.NoColor = !colored
			_, err := io.WriteString(cmd.OutOrStdout(), version.Summary(colored))
			return err
		case "json":
			return renderVersionJSON(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

func renderVersionJSON(out io.Writer) error {
	payload := versionPayload{
		Tool:      "sfcc",
		Version:   strings.TrimSpace(version.Version),
		GitCommit: strings.TrimSpace(version.GitCommit),
		BuildDate: strings.TrimSpace(version.BuildDate),
		Modules:   map[string]string{},
	}
	for _, fp := range version.Fingerprints() {
		payload.Modules[fp.Path] = fp.Version
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
