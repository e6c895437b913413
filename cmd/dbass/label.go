package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/dbass-tools/internal/classify"
	"github.com/inodb/dbass-tools/internal/dbass"
	"github.com/inodb/dbass-tools/internal/output"
	"github.com/inodb/dbass-tools/internal/pipeline"
)

func newLabelCmd(a *app) *cobra.Command {
	var (
		spliceType string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "label [input]",
		Short: "Classify splice events as denovo, cryptic, pseudoexon, trans, unclear or insufficient",
		Long: `Label each DBASS record by where its annotated variant lies relative to the
authentic splice site and the novel junction (marked with '/').

With -s acceptor the rules are mirrored around the authentic acceptor: distances
are counted positive towards the intron (upstream) instead of downstream. The
older label_dbass.py script applied the donor rules to every record regardless
of -s, so acceptor labels can differ from its output.

Output columns: Gene, Alteration, NucleotideSequence, Label, SpliceSiteType.`,
		Example: `  dbass label -s donor dbass5_donors.tsv
  dbass label -s acceptor -o labels.tsv dbass5_acceptors.tsv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			siteType, err := classify.ParseSiteType(spliceType)
			if err != nil {
				return err
			}
			return a.runLabel(cmd, inputArg(args), outputPath, siteType)
		},
	}

	cmd.Flags().StringVarP(&spliceType, "splice-type", "s", "", "Splice site type: donor or acceptor")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	cmd.MarkFlagRequired("splice-type")

	return cmd
}

func (a *app) runLabel(cmd *cobra.Command, inputPath, outputPath string, siteType classify.SiteType) error {
	parser, err := dbass.NewParser(inputPath,
		dbass.ColGeneName,
		dbass.ColAlteration,
		dbass.ColNucleotideSequence,
		dbass.ColComment,
	)
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

	stats, err := runner.Label(parser, output.NewTabWriter(out, output.LabelColumns), classify.New(siteType))
	if cerr := closeOut(); err == nil && cerr != nil {
		err = fmt.Errorf("closing output: %w", cerr)
	}
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("splice_type", string(siteType)),
		zap.Int("rows", stats.Rows),
		zap.Int("skipped", stats.Skipped),
	}
	for _, l := range classify.Labels {
		fields = append(fields, zap.Int(string(l), stats.Labels[l]))
	}
	a.logger.Info("labelled records", fields...)
	return nil
}
