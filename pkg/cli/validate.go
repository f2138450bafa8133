package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stubkit/stubd/pkg/cli/internal/output"
	"github.com/stubkit/stubd/pkg/config"
)

// ValidateOutput is the --json form of a validate run.
type ValidateOutput struct {
	Files []string        `json:"files"`
	Count int             `json:"count"`
	Stubs []ValidatedStub `json:"stubs"`
}

// ValidatedStub summarizes one parsed lifecycle.
type ValidatedStub struct {
	Index     int      `json:"index"`
	ID        string   `json:"id"`
	Methods   []string `json:"methods"`
	URL       string   `json:"url"`
	Responses int      `json:"responses"`
}

func newValidateCmd(v *viper.Viper) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "validate [data]",
		Short: "Check stub documents without starting any portal",
		Long: `Parse and schema-check stub documents, then list the stubs they define.

The data argument accepts the same forms as --data: a file, a directory or a
glob. Without an argument the configured --data is used.`,
		Example: `  stubd validate stubs.yaml
  stubd validate 'stubs/**/*.yaml' --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := v.GetString(keyData)
			if len(args) == 1 {
				data = args[0]
			}
			if data == "" {
				return errors.New("no stub documents given: pass a path or set --data")
			}

			files, err := config.MatchFiles(data)
			if err != nil {
				return err
			}
			lifecycles, err := config.LoadFromPattern(data)
			if err != nil {
				return err
			}

			out := ValidateOutput{Files: files, Count: len(lifecycles), Stubs: make([]ValidatedStub, 0, len(lifecycles))}
			for i, lc := range lifecycles {
				out.Stubs = append(out.Stubs, ValidatedStub{
					Index:     i,
					ID:        lc.ID,
					Methods:   lc.Pattern.Methods,
					URL:       lc.Pattern.URL.String(),
					Responses: len(lc.Responses),
				})
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				return output.JSON(w, out)
			}
			fmt.Fprintf(w, "%d stub(s) in %d file(s)\n", out.Count, len(files))
			if out.Count == 0 {
				return nil
			}
			tw := output.Table(w)
			fmt.Fprintln(tw, "INDEX\tMETHODS\tURL\tRESPONSES")
			for _, s := range out.Stubs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", s.Index, strings.Join(s.Methods, ","), s.URL, s.Responses)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
