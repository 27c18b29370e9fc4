package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orehub/minetrack/internal/config"
	"github.com/orehub/minetrack/internal/store/postgres"
	"github.com/orehub/minetrack/internal/sync"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export the workspace as JSONL",
	GroupID: "admin",
	Long: `Export property definitions and issues as JSONL. Without a
destination flag the export goes to stdout. With --interval the command
keeps running and re-exports on every tick until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.FromEnv()
		if err != nil {
			return err
		}

		// Flags win over the MINETRACK_EXPORT_* environment.
		outFile := stringSetting(cmd, "output", env.ExportFile)
		bucket := stringSetting(cmd, "s3-bucket", env.ExportS3Bucket)
		key := stringSetting(cmd, "s3-key", env.ExportS3Key)
		region := stringSetting(cmd, "s3-region", env.ExportS3Region)
		endpoint := stringSetting(cmd, "s3-endpoint", env.ExportS3Endpoint)
		interval, _ := cmd.Flags().GetDuration("interval")
		if !cmd.Flags().Changed("interval") {
			interval = env.ExportInterval
		}

		dbURL, _, err := resolveSettings()
		if err != nil {
			return err
		}
		st, err := postgres.New(dbURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer st.Close()

		ctx := context.Background()

		var destinations []sync.Destination
		if outFile != "" {
			destinations = append(destinations, sync.NewFileDestination(outFile))
		}
		if bucket != "" {
			dest, err := sync.NewS3Destination(ctx, bucket, key, region, endpoint)
			if err != nil {
				return fmt.Errorf("configuring S3: %w", err)
			}
			destinations = append(destinations, dest)
		}

		// No destination: one-shot export to stdout.
		if len(destinations) == 0 {
			return sync.ExportJSONL(ctx, st, workspace, os.Stdout)
		}

		if interval <= 0 {
			var buf bytes.Buffer
			if err := sync.ExportJSONL(ctx, st, workspace, &buf); err != nil {
				return err
			}
			for _, dest := range destinations {
				if err := dest.Write(ctx, buf.Bytes()); err != nil {
					return err
				}
			}
			return nil
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		sched := sync.NewScheduler(st, workspace, destinations, interval, logger)
		sched.Start()
		defer sched.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

// stringSetting resolves a flag with an environment fallback: the env
// value applies only when the flag was not given, even to empty it out.
func stringSetting(cmd *cobra.Command, name, envValue string) string {
	if !cmd.Flags().Changed(name) && envValue != "" {
		return envValue
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "write the export to a local file")
	exportCmd.Flags().String("s3-bucket", "", "upload the export to this S3 bucket")
	exportCmd.Flags().String("s3-key", "minetrack/backup.jsonl", "S3 object key")
	exportCmd.Flags().String("s3-region", "us-east-1", "S3 region")
	exportCmd.Flags().String("s3-endpoint", "", "custom S3 endpoint (MinIO and similar)")
	exportCmd.Flags().Duration("interval", 0, "re-export on this interval until interrupted")
}
