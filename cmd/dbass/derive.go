package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/dbass-tools/internal/allele"
	"github.com/inodb/dbass-tools/internal/dbass"
	"github.com/inodb/dbass-tools/internal/output"
	"github.com/inodb/dbass-tools/internal/pipeline"
)

func newDeriveCmd(a *app) *cobra.Command {
	var (
		ref        bool
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "derive [input]",
		Short: "Rewrite NucleotideSequence to the alternate (or reference) allele",
		Long: `Rewrite the NucleotideSequence column of a DBASS file so that it spells out
the alternate allele, or the reference allele with --ref. All other columns are
echoed unchanged. Rows whose annotations cannot be parsed are logged and skipped.`,
		Example: `  dbass derive dbass5.tsv > alt.tsv
  dbass derive --ref -o ref.tsv dbass5.tsv
  zcat dbass5.tsv.gz | dbass derive -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			which := allele.Alternate
			if ref {
				which = allele.Reference
			}
			return a.runDerive(cmd, inputArg(args), outputPath, which)
		},
	}

	cmd.Flags().BoolVar(&ref, "ref", false, "Derive the reference (wild-type) sequence instead")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func (a *app) runDerive(cmd *cobra.Command, inputPath, outputPath string, which allele.Allele) error {
	parser, err := dbass.NewParser(inputPath, dbass.ColNucleotideSequence)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer parser.Close()

	out, closeOut, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner()
	runner.SetWorkers(viper.GetInt("workers"))
	runner.SetLogger(a.logger)

	a.logger.Debug("deriving sequences",
		zap.String("input", inputPath),
		zap.Stringer("allele", which))

	stats, err := runner.Derive(parser, output.NewTabWriter(out, parser.Header().Names()), which)
	if cerr := closeOut(); err == nil && cerr != nil {
		err = fmt.Errorf("closing output: %w", cerr)
	}
	if err != nil {
		return err
	}

	a.logger.Info("derived sequences",
		zap.Stringer("allele", which),
		zap.Int("rows", stats.Rows),
		zap.Int("written", stats.Written),
		zap.Int("skipped", stats.Skipped))
	return nil
}
