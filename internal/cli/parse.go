package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/swe-alert-service/internal/snowplot"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Extract the observation from a saved snow plot page",
	Long: `Run the table extractor on a saved HTML page and print the observation as JSON.
Use "-" to read from stdin. Useful for checking a page offline after the
upstream layout changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	page, err := snowplot.Decode(data, "")
	if err != nil {
		return err
	}

	obs, err := snowplot.ExtractObservation(page)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(obs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode observation: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
