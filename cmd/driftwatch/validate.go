package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"driftwatch-io/driftwatch/pkg/cli"
	"driftwatch-io/driftwatch/pkg/dcl/parser"
)

var validateFlags struct {
	file   string
	dir    string
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate DCL policy files",
	Long: `Validate DCL policy files for syntax errors.

The validate command parses each policy file and reports every file that
fails to parse, with the line and column of the first error.

Examples:
  # Validate a single file
  driftwatch validate --file baseline.dcl

  # Validate a directory of policy files
  driftwatch validate --dir policies/

  # JSON output for CI/CD
  driftwatch validate --dir policies/ --format json`,
	RunE: validatePolicies,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "", "policy file to validate")
	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of policy files")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// FileReport is the validation outcome for one policy file.
type FileReport struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Rules  int    `json:"rules"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Error  string `json:"error,omitempty"`
}

func validatePolicies(cmd *cobra.Command, args []string) error {
	if validateFlags.file == "" && validateFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if validateFlags.file != "" {
		files = append(files, validateFlags.file)
	}
	if validateFlags.dir != "" {
		matches, err := filepath.Glob(filepath.Join(validateFlags.dir, "*.dcl"))
		if err != nil {
			return fmt.Errorf("failed to list policy files: %w", err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	reports := make([]FileReport, 0, len(files))
	failed := 0
	for _, file := range files {
		report := validatePolicyFile(file)
		if !report.Valid {
			failed++
		}
		reports = append(reports, report)
	}

	if validateFlags.format != "text" {
		formatter, err := cli.NewFormatter(cli.OutputFormat(validateFlags.format))
		if err != nil {
			return err
		}
		if err := formatter.FormatTo(os.Stdout, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if r.Valid {
				fmt.Printf("✓ %s (%d rules)\n", r.File, r.Rules)
			} else if r.Line > 0 {
				fmt.Printf("✗ %s:%d:%d: %s\n", r.File, r.Line, r.Column, r.Error)
			} else {
				fmt.Printf("✗ %s: %s\n", r.File, r.Error)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(files))
	}
	return nil
}

func validatePolicyFile(path string) FileReport {
	report := FileReport{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	rules, err := parser.ParseFile(string(data))
	if err != nil {
		var pErr *parser.ParseError
		if errors.As(err, &pErr) && pErr.Location.IsValid() {
			report.Line = pErr.Location.Line
			report.Column = pErr.Location.Column
			report.Error = pErr.Message
		} else {
			report.Error = err.Error()
		}
		return report
	}

	report.Valid = true
	report.Rules = len(rules)
	return report
}
