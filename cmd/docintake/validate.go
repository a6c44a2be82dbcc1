package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/docintake/internal/cli"
	"github.com/Veraticus/docintake/internal/common"
	"github.com/Veraticus/docintake/internal/model"
	"github.com/spf13/cobra"
)

// shipmentFile is the JSON accepted by validate.
type shipmentFile struct {
	Documents []model.Document `json:"documents"`
	Shipment  model.Shipment   `json:"shipment"`
}

func readShipmentFile(r io.Reader) (*shipmentFile, error) {
	var sf shipmentFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&sf); err != nil {
		return nil, common.Malformed("shipment file", err)
	}
	if strings.TrimSpace(sf.Shipment.ID) == "" {
		return nil, fmt.Errorf("%w: shipment.id is required", common.ErrMalformedInput)
	}
	return &sf, nil
}

func validateCmd() *cobra.Command {
	var (
		asJSON         bool
		noStore        bool
		askOverride    bool
		overrideReason string
		overrideBy     string
	)

	cmd := &cobra.Command{
		Use:   "validate <shipment.json>",
		Short: "Validate the documents of a shipment",
		Long: `Validate a shipment and its documents against the configured requirements.
The file holds {"shipment": {...}, "documents": [...]}; use - for stdin.

An invalid report can be overridden with --override-reason; the override is
stored with the report and does not change its results.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			sf, err := readShipmentFile(in)
			if err != nil {
				return err
			}

			runner, err := newRunner()
			if err != nil {
				return err
			}

			report, err := runner.ValidateShipment(cmd.Context(), sf.Shipment, sf.Documents)
			if err != nil {
				return err
			}

			if askOverride && !report.IsValid && overrideReason == "" {
				if err := cli.RenderReport(cmd.ErrOrStderr(), sf.Shipment.ID, report); err != nil {
					return err
				}
				overrideReason, err = askOverrideReason(cmd)
				if err != nil {
					return err
				}
			}

			if overrideReason != "" {
				if report.IsValid {
					fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatInfo("Report is valid; override not recorded"))
				} else {
					report = report.WithOverride(model.Override{
						Reason: overrideReason,
						By:     overrideBy,
						At:     time.Now().UTC(),
					})
				}
			}

			if !noStore {
				store, err := initStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() {
					if closeErr := store.Close(); closeErr != nil {
						slog.Error("Failed to close storage", "error", closeErr)
					}
				}()
				if _, err := store.SaveReport(cmd.Context(), sf.Shipment.ID, report); err != nil {
					return fmt.Errorf("failed to store report: %w", err)
				}
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else if err := cli.RenderReport(cmd.OutOrStdout(), sf.Shipment.ID, report); err != nil {
				return err
			}

			if !report.DisplayValid() {
				return errInvalidShipment
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not store the report")
	cmd.Flags().StringVar(&overrideReason, "override-reason", "", "accept an invalid report for this reason")
	cmd.Flags().BoolVarP(&askOverride, "interactive", "i", false, "ask whether to override an invalid report")
	cmd.Flags().StringVar(&overrideBy, "override-by", os.Getenv("USER"), "who is overriding the report")

	return cmd
}

// askOverrideReason asks whether to accept an invalid report and why. An empty
// reason means no override.
func askOverrideReason(cmd *cobra.Command) (string, error) {
	asker := cli.NewAsker(cmd.InOrStdin(), cmd.ErrOrStderr())

	ok, err := asker.Confirm(cmd.Context(), "Override the report?")
	if err != nil || !ok {
		return "", err
	}
	for {
		reason, err := asker.Ask(cmd.Context(), "Reason:")
		if err != nil {
			return "", err
		}
		if reason != "" {
			return reason, nil
		}
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("A reason is required"))
	}
}

// errInvalidShipment makes validate exit non-zero without repeating the report.
var errInvalidShipment = errors.New("shipment documents are not valid")

func reportCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report <shipment-id>",
		Short: "Show the latest stored validation report for a shipment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close storage", "error", closeErr)
				}
			}()

			stored, err := store.LatestReport(cmd.Context(), args[0])
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(fmt.Sprintf("no report stored for shipment %s", args[0]), err)
			}
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stored)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Validated "+stored.CreatedAt.Local().Format(time.DateTime)))
			return cli.RenderReport(cmd.OutOrStdout(), stored.ShipmentID, stored.Report)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}

func rulesCmd() *cobra.Command {
	var productType string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List validation rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := cfg.Validation.Registry()
			if err != nil {
				return err
			}

			rules := registry.GetAllRules()
			if productType != "" {
				rules = registry.GetRulesForProductType(productType)
			}
			if err := cli.RenderRules(cmd.OutOrStdout(), rules); err != nil {
				return err
			}

			if productType != "" {
				table, err := cfg.Validation.RequirementTable()
				if err != nil {
					return err
				}
				labels := make([]string, 0)
				for _, t := range table.Required(productType) {
					labels = append(labels, t.Label())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s\n", cli.BoldStyle.Render("Required documents:"), strings.Join(labels, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&productType, "product-type", "p", "", "only rules that apply to this product type")

	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show OCR and AI availability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := newComponents()
			if err != nil {
				return err
			}
			defer comps.Close()

			return cli.RenderStatus(cmd.OutOrStdout(), comps.ocr.Status(), comps.backend.Status())
		},
	}
}
