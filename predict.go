package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"asthma-care-server/internal/clinical"
	"asthma-care-server/internal/models"
)

func getPredictCmd() *cobra.Command {
	var (
		age    int
		height float64
		sex    string
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Prints the predicted PEFR and its zone limits",
		Long: `Prints the predicted peak expiratory flow for a patient together with
the 80 % and 50 % zone limits used on the PEFR chart.

Sex may be given directly or inferred from a Thai or English name prefix.

Examples:
  asthma-care predict --age 30 --height 170 --sex male
  asthma-care predict --age 10 --height 130
  asthma-care predict --age 45 --height 158 --prefix นาง`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// needs no configuration
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := models.ParseSex(sex)
			if s == models.SexUnknown && prefix != "" {
				s = clinical.SexFromPrefix(prefix)
			}
			return printPrediction(cmd.OutOrStdout(), age, height, s)
		},
	}

	cmd.Flags().IntVar(&age, "age", 0, "age in whole years")
	cmd.Flags().Float64Var(&height, "height", 0, "height in cm")
	cmd.Flags().StringVar(&sex, "sex", "", "male or female")
	cmd.Flags().StringVar(&prefix, "prefix", "", "name prefix used when --sex is not given")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}

func printPrediction(w io.Writer, age int, height float64, sex models.Sex) error {
	predicted := clinical.PredictPEFR(age, height, sex)
	if predicted <= 0 {
		_, err := fmt.Fprintln(w, "predicted PEFR: N/A (height required)")
		return err
	}
	_, err := fmt.Fprintf(w, "predicted PEFR: %.0f L/min\ngreen zone:     >= %.0f\norange zone:    >= %.0f\nred zone:       <  %.0f\n",
		predicted,
		predicted*clinical.GreenZoneFraction,
		predicted*clinical.OrangeZoneFraction,
		predicted*clinical.OrangeZoneFraction,
	)
	return err
}
