package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go-agrofleet/internal/mdcsv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix    = "MDCSV"
	cfgDelimiter = "delimiter"
	cfgOutput    = "output"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "mdcsv",
		Short:         "Convert markdown record listings into CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConvertCmd(v))
	return root
}

func newConvertCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input.md>",
		Short: "Convert a markdown document into a CSV file",
		Long: `Each "## Heading" starts a record; "- **Key:** value" bullets and
"Key: value" lines below it become columns. The heading is written to the
"nombre" column. Without --output the CSV is written next to the input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delimiter, err := parseDelimiter(v.GetString(cfgDelimiter))
			if err != nil {
				return err
			}
			output := v.GetString(cfgOutput)
			if output == "" {
				output = defaultOutput(args[0])
			}
			n, err := convertFile(args[0], output, delimiter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d records written to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringP(cfgOutput, "o", "", "output CSV path (default: input with .csv extension, \"-\" for stdout)")
	cmd.Flags().StringP(cfgDelimiter, "d", ",", "field delimiter")
	_ = v.BindPFlag(cfgOutput, cmd.Flags().Lookup(cfgOutput))
	_ = v.BindPFlag(cfgDelimiter, cmd.Flags().Lookup(cfgDelimiter))
	return cmd
}

// convertFile parses input before touching output, so a failed conversion
// leaves no file behind.
func convertFile(input, output string, delimiter rune) (n int, err error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	doc, err := mdcsv.Parse(in)
	if err != nil {
		return 0, fmt.Errorf("convert %s: %w", input, err)
	}
	if len(doc.Records) == 0 {
		return 0, fmt.Errorf("convert %s: %w", input, mdcsv.ErrNoRecords)
	}

	if output == "-" {
		if err := mdcsv.WriteCSV(os.Stdout, doc, delimiter); err != nil {
			return 0, fmt.Errorf("write csv: %w", err)
		}
		return len(doc.Records), nil
	}

	f, err := os.Create(output)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			n, err = 0, fmt.Errorf("close output: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(output)
		}
	}()

	if err := mdcsv.WriteCSV(f, doc, delimiter); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	return len(doc.Records), nil
}

func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".csv"
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "", ",":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}
