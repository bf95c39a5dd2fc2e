/*
Package cli provides output formatting helpers for the driftwatch command.

Commands that support machine-readable output select a formatter by name:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, reports); err != nil {
		return err
	}
*/
package cli
