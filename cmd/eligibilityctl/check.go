package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/course-eligibility-api/internal/dto"
	"github.com/noah-isme/course-eligibility-api/internal/eligibility"
	"github.com/noah-isme/course-eligibility-api/internal/i18n"
	"github.com/noah-isme/course-eligibility-api/internal/repository"
	"github.com/noah-isme/course-eligibility-api/internal/service"
)

type checkOptions struct {
	file           string
	mode           string
	now            string
	lang           string
	output         string
	maxSpan        time.Duration
	settleMargin   time.Duration
	sectionFormats []string
	verbose        bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "eligibilityctl",
		Short:         "Offline checks for course completion analytics eligibility",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	opts := checkOptions{}
	limits := eligibility.DefaultLimits()

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a course snapshot file",
		Long: `Evaluate a course snapshot and its enrolment samples without a database.

The snapshot uses the same JSON shape as POST /eligibility/evaluate.

Examples:
  eligibilityctl check --file course.json
  eligibilityctl check --file course.json --mode prediction --now 2026-10-14T00:00:00Z --lang id
  cat course.json | eligibilityctl check --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "Snapshot file, - reads stdin")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "training or prediction, overrides the file")
	cmd.Flags().StringVar(&opts.now, "now", "", "Evaluation instant in RFC3339, overrides the file")
	cmd.Flags().StringVarP(&opts.lang, "lang", "l", "en", "Message language (en, id)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	cmd.Flags().DurationVar(&opts.maxSpan, "max-span", limits.MaxSpan, "Longest accepted course or enrolment window")
	cmd.Flags().DurationVar(&opts.settleMargin, "settle-margin", limits.SettleMargin, "Time a finished course must be closed before training")
	cmd.Flags().StringSliceVar(&opts.sectionFormats, "section-formats", repository.DefaultSectionFormats, "Course formats organised into sections")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log evaluation details to stderr")

	return cmd
}

func runCheck(cmd *cobra.Command, opts checkOptions) error {
	req, err := readSnapshot(cmd.InOrStdin(), opts.file)
	if err != nil {
		return err
	}
	if opts.mode != "" {
		req.Mode = opts.mode
	}
	if opts.now != "" {
		at, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return fmt.Errorf("invalid --now (use RFC3339): %w", err)
		}
		req.Now = &at
	}

	localizer, err := i18n.NewLocalizer("en")
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
	}

	svc := service.NewEligibilityService(service.EligibilityServiceParams{
		Formats: repository.NewFormatCatalog(opts.sectionFormats),
		Logger:  logger,
		Config: service.EligibilityServiceConfig{
			Limits: eligibility.Limits{MaxSpan: opts.maxSpan, SettleMargin: opts.settleMargin},
		},
	})

	report, err := svc.Evaluate(cmd.Context(), *req)
	if err != nil {
		return err
	}
	if report.Reason != "" {
		report.Message = localizer.Message(localizer.Resolve(opts.lang, ""), report.Reason)
	}

	switch strings.ToLower(opts.output) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text", "":
		return printReport(cmd.OutOrStdout(), report)
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
}

func readSnapshot(stdin io.Reader, file string) (*dto.EvaluateRequest, error) {
	var src io.Reader = stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		src = f
	}

	var req dto.EvaluateRequest
	if err := json.NewDecoder(src).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &req, nil
}

func printReport(out io.Writer, report *dto.EligibilityReport) error {
	verdict := "analysable"
	if !report.Analysable {
		verdict = fmt.Sprintf("not analysable: %s (%s)", report.Message, report.Reason)
	}
	fmt.Fprintf(out, "course %s [%s]: %s\n", report.CourseID, report.Mode, verdict)
	if !report.Analysable {
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SAMPLE\tUSER\tSTART\tEND\tVALID")
	for _, sample := range report.Samples {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", sample.SampleID, sample.UserID, stamp(sample.TimeStart), stamp(sample.TimeEnd), sample.Valid)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if report.Summary != nil {
		fmt.Fprintf(out, "%d of %d samples valid (%.0f%%)\n", report.Summary.Valid, report.Summary.Total, report.Summary.ValidRatio*100)
	}
	return nil
}

func stamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
