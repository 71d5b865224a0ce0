package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/molnia/dbatch/config"
	"github.com/molnia/dbatch/engine"
	"github.com/molnia/dbatch/sink"
	"github.com/molnia/dbatch/sources"
)

// NewRunCommand creates the command that executes a migration job.
func NewRunCommand(_ *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a migration job from a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}

			source, err := sources.New(c.Source.Type, c.Source.Database, c.Source.URL)
			if err != nil {
				return err
			}
			defer source.Close()

			pipeline, err := c.Pipeline()
			if err != nil {
				return err
			}

			sinkOpts, err := c.SinkOptions()
			if err != nil {
				return err
			}
			snk := sink.New(c.Sink.Destination, sinkOpts...)

			eng := engine.New(source, c.Query(), snk,
				engine.WithPipeline(pipeline),
				engine.WithFaultPolicy(c.FaultPolicy()),
				engine.WithChunkSize(c.Chunk.Size),
				engine.WithLogger(slog.Default()),
			)

			result, runErr := eng.Run(cmd.Context())
			if result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), engine.Report(result))
			}
			if runErr != nil {
				return fmt.Errorf("run %s: %w", c, runErr)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "dbatch.yaml", "path to the job config file")

	return cmd
}
