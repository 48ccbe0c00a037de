package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"epqref/internal/config"
	"epqref/internal/oracle"
	"epqref/internal/refschema"
	"epqref/internal/request"
	"epqref/internal/validator"
)

func newDumpCmd() *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "dump <module> [key=value ...]",
		Short: "Invoke one dump in single mode and print its raw CSV",
		Long: `Runs the oracle's unframed single-request mode for ad-hoc debugging.
This path has no caching or dedup semantics.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			return runDump(cmd.Context(), cfg, args, validate)
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "typecheck rows against the module schema before printing")
	return cmd
}

func runDump(ctx context.Context, cfg config.Config, args []string, validate bool) error {
	req, err := request.ParseWireLine(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	if cfg.Oracle.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Oracle.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	runner := oracle.New(oracle.Command{
		Path: cfg.Oracle.Command,
		Args: cfg.Oracle.Args,
		Dir:  cfg.Oracle.Dir,
		Env:  cfg.Oracle.Env,
	})
	table, err := runner.RunSingle(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if validate {
		valid := validator.New(refschema.Default())
		if _, err := valid.ValidateModule(req.Module(), table); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
	}
	fmt.Print(table.Render())
	return nil
}
