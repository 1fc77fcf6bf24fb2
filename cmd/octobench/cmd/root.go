// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/octonaut/config"
	"github.com/ava-labs/octonaut/utils"
)

const (
	logsFolder  = "logs"
	programName = "octobench"
)

var (
	configFile   string
	logLevel     string
	logDir       string
	parallel     int
	printMetrics bool

	cfg      config.Config
	log      logging.Logger
	factory  *logFactory
	registry *prometheus.Registry

	rootCmd = &cobra.Command{
		Use:               programName,
		Short:             "Exercise the octonaut containers",
		SuggestFor:        []string{"octo-bench"},
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.DisableAutoGenTag = true

	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"JSON or YAML config file",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"log level, overrides the config file",
	)
	rootCmd.PersistentFlags().StringVar(
		&logDir,
		"log-dir",
		"",
		"directory to write rotated log files to",
	)
	rootCmd.PersistentFlags().IntVar(
		&parallel,
		"parallel",
		1,
		"number of independent container sets run concurrently",
	)
	rootCmd.PersistentFlags().BoolVar(
		&printMetrics,
		"metrics",
		false,
		"print allocator metrics on exit",
	)

	rootCmd.AddCommand(
		hashCmd,
		bufferCmd,
		headersCmd,
	)
}

func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (config.Config, error) {
	var b []byte
	if configFile != "" {
		var err error
		b, err = os.ReadFile(configFile)
		if err != nil {
			return config.Config{}, err
		}
	}
	c, err := config.Load(b)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: failed to load %q", err, configFile)
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	return c, c.Validate()
}

func setup(*cobra.Command, []string) error {
	if parallel < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidParallel, parallel)
	}
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	loggingConfig := logging.Config{}
	loggingConfig.LogLevel = level
	loggingConfig.DisplayLevel = level
	loggingConfig.LogFormat = logging.JSON
	loggingConfig.MaxSize = 8
	loggingConfig.MaxFiles = 4
	if logDir != "" {
		loggingConfig.Directory, err = utils.InitSubDirectory(logDir, logsFolder)
		if err != nil {
			return err
		}
	}
	factory = newLogFactory(loggingConfig)
	log, err = factory.Make(programName)
	if err != nil {
		factory.Close()
		return err
	}
	registry = prometheus.NewRegistry()

	log.Debug("loaded config",
		zap.String("allocator", cfg.Allocator),
		zap.Int("segmentSize", cfg.SegmentSize),
		zap.String("hashFunction", cfg.HashFunction),
		zap.Uint("hashBucketsLog2", cfg.HashBucketsLog2),
		zap.Int("parallel", parallel),
	)
	return nil
}

func teardown(*cobra.Command, []string) {
	if printMetrics && registry != nil {
		if err := outputMetrics(registry); err != nil {
			log.Warn("failed to gather metrics", zap.Error(err))
		}
	}
	if factory != nil {
		factory.Close()
	}
}

func outputMetrics(g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			default:
				continue
			}
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			utils.Outf("{{cyan}}%s{{/}}%s {{bold}}%.0f{{/}}\n", mf.GetName(), labels, v)
		}
	}
	return nil
}
