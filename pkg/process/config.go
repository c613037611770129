// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package process

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// SaveConfig writes the flags of cmd that were changed or overridden to
// outfile. The format follows the extension of outfile. Hidden flags are
// never written.
func SaveConfig(cmd *cobra.Command, outfile string, overrides map[string]interface{}) error {
	out := viper.New()
	saved := 0
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Hidden {
			return
		}
		if value, ok := overrides[f.Name]; ok {
			out.Set(f.Name, value)
			saved++
			return
		}
		if f.Changed {
			out.Set(f.Name, f.Value.String())
			saved++
		}
	})

	if err := os.MkdirAll(filepath.Dir(outfile), 0700); err != nil {
		return Error.Wrap(err)
	}
	if saved == 0 {
		return Error.Wrap(atomicWrite(outfile, 0600, nil))
	}
	return Error.Wrap(out.WriteConfigAs(outfile))
}

// atomicWrite is a helper to atomically write the data to the outfile.
func atomicWrite(outfile string, mode os.FileMode, data []byte) (err error) {
	fh, err := os.CreateTemp(filepath.Dir(outfile), filepath.Base(outfile))
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, fh.Close())
			err = errs.Combine(err, os.Remove(fh.Name()))
		}
	}()
	if _, err := fh.Write(data); err != nil {
		return errs.Wrap(err)
	}
	if err := fh.Chmod(mode); err != nil {
		return errs.Wrap(err)
	}
	if err := fh.Sync(); err != nil {
		return errs.Wrap(err)
	}
	if err := fh.Close(); err != nil {
		return errs.Wrap(err)
	}
	if err := os.Rename(fh.Name(), outfile); err != nil {
		return errs.Wrap(err)
	}
	return nil
}
