// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package process runs cobra commands with configuration taken from flags,
// ROUTING_ environment variables and an optional config file.
package process

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// EnvPrefix is the prefix of environment variables overriding flags.
const EnvPrefix = "routing"

// Exec runs a cobra command and exits the process when it fails.
func Exec(cmd *cobra.Command) {
	Must(ExecE(cmd))
}

// ExecE runs a cobra command. Before a command runs, every flag that was not
// given on the command line is loaded from the environment or from the file
// named by --config.
func ExecE(cmd *cobra.Command) error {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	if cmd.PersistentFlags().Lookup("config") == nil {
		cmd.PersistentFlags().String("config", "", "path to a configuration file")
	}
	cleanup(cmd)
	return cmd.Execute()
}

// Viper returns a viper reading the environment and the config file of cmd.
func Viper(cmd *cobra.Command) (*viper.Viper, error) {
	vip := viper.New()
	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vip.AutomaticEnv()

	if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
		vip.SetConfigFile(f.Value.String())
		if err := vip.ReadInConfig(); err != nil {
			return nil, Error.Wrap(err)
		}
	}
	return vip, nil
}

func cleanup(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		cleanup(sub)
	}

	internalRun := cmd.Run
	internalRunE := cmd.RunE
	if internalRun == nil && internalRunE == nil {
		return
	}

	cmd.Run = nil
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := loadFlags(cmd); err != nil {
			return err
		}
		if internalRunE != nil {
			return internalRunE(cmd, args)
		}
		internalRun(cmd, args)
		return nil
	}
}

// loadFlags copies values from viper into the flags that were not set.
func loadFlags(cmd *cobra.Command) error {
	vip, err := Viper(cmd)
	if err != nil {
		return err
	}

	var group errs.Group
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !vip.IsSet(f.Name) {
			return
		}
		if err := f.Value.Set(vip.GetString(f.Name)); err != nil {
			group.Add(Error.New("invalid value for %s: %v", f.Name, err))
			return
		}
		f.Changed = true
	})
	return group.Err()
}

// Ctx returns the context of cmd, canceled when the process is interrupted.
func Ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// Must checks for errors
func Must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
