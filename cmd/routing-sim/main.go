// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"fmt"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storj.io/routing/pkg/cfgstruct"
	"storj.io/routing/pkg/process"
	"storj.io/routing/pkg/sim"
)

var (
	rootCmd = &cobra.Command{
		Use:   "routing-sim",
		Short: "Simulates a routing network in a single process",
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Start a network, store chunks and read them back",
		RunE:  cmdRun,
	}
	setupCmd = &cobra.Command{
		Use:   "setup <config-file>",
		Short: "Write the given flags to a config file for later runs",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdSetup,
	}

	runCfg   sim.Config
	setupCfg sim.Config
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	cfgstruct.Bind(runCmd.Flags(), &runCfg)
	cfgstruct.Bind(setupCmd.Flags(), &setupCfg)
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	log, err := process.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := process.InitDebug(log.Named("debug"), monkit.Default); err != nil {
		log.Warn("debug endpoints unavailable", zap.Error(err))
	}

	ctx, cancel := process.Ctx(cmd)
	defer cancel()

	result, err := sim.Run(ctx, log.Named("sim"), runCfg)
	if err != nil {
		return err
	}
	log.Info("simulation finished",
		zap.Int("Nodes", result.Nodes),
		zap.Int("Stored", result.Stored),
		zap.Int("Fetched", result.Fetched),
		zap.Int("CacheHits", result.CacheHits),
		zap.Int("Contacts", result.Contacts),
	)
	return nil
}

func cmdSetup(cmd *cobra.Command, args []string) error {
	if err := setupCfg.Verify(); err != nil {
		return err
	}
	if err := process.SaveConfig(cmd, args[0], nil); err != nil {
		return err
	}
	fmt.Println("config written to", args[0])
	return nil
}

func main() {
	process.Exec(rootCmd)
}
