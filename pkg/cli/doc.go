/*
Package cli provides helpers shared by the feedback command.

Output Formatting:

Commands print results as text, JSON or CSV. Tabular results implement
Table so that the text and CSV formatters can lay them out as rows:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, accounts); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
