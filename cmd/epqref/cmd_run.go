package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"epqref/internal/config"
	"epqref/internal/oracle"
	"epqref/internal/refschema"
	"epqref/internal/report"
	"epqref/internal/request"
	"epqref/internal/uploader"
	"epqref/internal/util"
	"epqref/internal/validator"
)

func newRunCmd() *cobra.Command {
	var requestsPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one oracle batch and validate every result table",
		Long: `Reads wire lines ("<module> k=v ...") from a file or stdin, dedupes
them, invokes the oracle's batch mode once, validates each frame against
the registered schema, and writes a session report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			return runSession(cmd.Context(), cfg, requestsPath)
		},
	}
	cmd.Flags().StringVar(&requestsPath, "requests", "-", "wire-line file, or - for stdin")
	return cmd
}

func runSession(ctx context.Context, cfg config.Config, requestsPath string) error {
	reqs, err := readRequests(requestsPath)
	if err != nil {
		util.Errorf("bad request input: %v", err)
		return err
	}
	if len(reqs) == 0 {
		util.Warnf("no requests given; oracle not launched")
		return nil
	}

	if cfg.Oracle.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Oracle.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	writer := report.New(cfg.Report.OutputDir)
	session, err := writer.NewSession()
	if err != nil {
		return err
	}
	if err := writer.WriteRequests(session, reqs); err != nil {
		util.Warnf("session report: %v", err)
	}

	util.Infof("invoking oracle for %d unique dump(s)", len(reqs))
	for _, req := range reqs {
		util.Detailf("request %s", req.WireLine())
	}
	runner := oracle.New(oracle.Command{
		Path: cfg.Oracle.Command,
		Args: cfg.Oracle.Args,
		Dir:  cfg.Oracle.Dir,
		Env:  cfg.Oracle.Env,
	})
	result, runErr := runner.RunBatchResult(ctx, reqs)

	summary := report.Summary{
		SessionID:     session.ID,
		Timestamp:     time.Now().Format(time.RFC3339),
		DurationMS:    result.Duration.Milliseconds(),
		OracleCommand: cfg.Oracle.Command,
		RequestCount:  len(reqs),
		FrameCount:    len(result.Tables),
		RunInfo:       cfg.RunInfo,
	}
	if cfg.Report.KeepRaw {
		_ = writer.WriteText(session, "oracle_stdout.txt", result.Stdout)
		_ = writer.WriteText(session, "oracle_stderr.txt", result.Stderr)
	}

	if runErr != nil {
		summary.Error = runErr.Error()
		finishSession(ctx, cfg, writer, session, &summary)
		// Surface the oracle's own message verbatim; it is the useful part.
		if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
			fmt.Fprintln(os.Stderr, stderr)
		}
		util.Errorf("oracle batch failed: %v", runErr)
		return runErr
	}

	valid := validator.New(refschema.Default())
	summary.RowCounts = make(map[string]int, len(result.Tables))
	var failures []string
	for _, req := range reqs {
		table, ok := result.Tables[req.Key()]
		if !ok {
			summary.Missing = append(summary.Missing, req.WireLine())
			continue
		}
		if _, err := valid.ValidateModule(req.Module(), table); err != nil {
			failures = append(failures, err.Error())
			continue
		}
		summary.RowCounts[req.WireLine()] = len(table.Rows)
	}
	sort.Strings(summary.Missing)

	if len(summary.Missing) > 0 || len(failures) > 0 {
		summary.Error = fmt.Sprintf("%d missing frame(s), %d schema failure(s)", len(summary.Missing), len(failures))
	}
	finishSession(ctx, cfg, writer, session, &summary)

	for _, line := range summary.Missing {
		util.Errorf("no frame for request %q", line)
	}
	for _, failure := range failures {
		util.Errorf("%s", failure)
	}
	if summary.Error != "" {
		return fmt.Errorf("batch incomplete: %s", summary.Error)
	}
	util.Infof("validated %d table(s) in %s", len(result.Tables), result.Duration)
	return nil
}

// finishSession persists the summary, archives the directory, and uploads
// it when storage is configured. The summary is written before the archive
// so summary.json travels inside session.tar.zst and the upload; archive
// and upload metadata land in a second local write afterwards. Report
// failures are logged, never fatal.
func finishSession(ctx context.Context, cfg config.Config, writer *report.Writer, session report.Session, summary *report.Summary) {
	if err := writer.WriteSummary(session, *summary); err != nil {
		util.Warnf("session summary: %v", err)
	}
	rewrite := false
	if cfg.Report.Archive {
		if name, codec, err := writer.WriteArchive(session); err == nil {
			summary.ArchiveName = name
			summary.ArchiveCodec = codec
			rewrite = true
		} else {
			util.Warnf("session archive: %v", err)
		}
	}
	if cfg.Storage.CloudEnabled() {
		up, err := uploader.FromConfig(cfg.Storage)
		if err != nil {
			util.Warnf("uploader init: %v", err)
		} else if up.Enabled() {
			if location, err := up.UploadDir(ctx, session.Dir); err != nil {
				util.Warnf("session upload: %v", err)
			} else {
				summary.UploadLocation = location
				rewrite = true
				util.Infof("session uploaded to %s", location)
			}
		}
	}
	if rewrite {
		if err := writer.WriteSummary(session, *summary); err != nil {
			util.Warnf("session summary: %v", err)
		}
	}
}

// readRequests parses wire lines from a file or stdin, ignoring blank
// lines and # comments, and dedupes by canonical key.
func readRequests(path string) ([]request.Request, error) {
	var in io.Reader
	if path == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer util.CloseWithErr(f, "request input")
		in = f
	}

	seen := make(map[string]request.Request)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		req, err := request.ParseWireLine(line)
		if err != nil {
			return nil, err
		}
		seen[req.Key()] = req
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	reqs := make([]request.Request, 0, len(seen))
	for _, req := range seen {
		reqs = append(reqs, req)
	}
	request.SortByKey(reqs)
	return reqs, nil
}
