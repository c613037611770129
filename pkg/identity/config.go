// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package identity

import (
	"encoding/pem"
	"os"
	"path/filepath"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

const (
	blockTypeSignSeed      = "ED25519 SEED"
	blockTypeEncryptSecret = "CURVE25519 PRIVATE KEY"
)

// Config configures where an identity is kept on disk.
type Config struct {
	KeyPath string `help:"path to the identity key file, empty keeps the identity in memory" default:""`
}

// LoadOrCreate loads the identity at KeyPath or generates and saves a new one.
func (config Config) LoadOrCreate(log *zap.Logger) (*FullID, error) {
	if config.KeyPath == "" {
		log.Debug("no key path configured, generating ephemeral identity")
		return Generate()
	}

	_, err := os.Stat(config.KeyPath)
	switch {
	case err == nil:
		id, err := config.Load()
		if err != nil {
			return nil, err
		}
		log.Info("identity loaded", zap.Stringer("Name", id.Name()))
		return id, nil
	case os.IsNotExist(err):
		id, err := Generate()
		if err != nil {
			return nil, err
		}
		if err := config.Save(id); err != nil {
			return nil, err
		}
		log.Info("identity generated", zap.Stringer("Name", id.Name()), zap.String("Path", config.KeyPath))
		return id, nil
	default:
		return nil, ErrIdentity.Wrap(err)
	}
}

// Load reads the identity from KeyPath.
func (config Config) Load() (*FullID, error) {
	data, err := os.ReadFile(config.KeyPath)
	if err != nil {
		return nil, ErrIdentity.Wrap(err)
	}

	var seed []byte
	var secret [32]byte
	var hasSecret bool
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		switch block.Type {
		case blockTypeSignSeed:
			seed = block.Bytes
		case blockTypeEncryptSecret:
			if len(block.Bytes) != len(secret) {
				return nil, ErrIdentity.New("invalid encryption key in %q", config.KeyPath)
			}
			copy(secret[:], block.Bytes)
			hasSecret = true
		}
	}
	if seed == nil || !hasSecret {
		return nil, ErrIdentity.New("incomplete identity file %q", config.KeyPath)
	}
	return FromSeeds(seed, secret)
}

// Save writes id to KeyPath, readable only by the owner.
func (config Config) Save(id *FullID) error {
	var data []byte
	data = append(data, pem.EncodeToMemory(&pem.Block{Type: blockTypeSignSeed, Bytes: id.signSecret.Seed()})...)
	data = append(data, pem.EncodeToMemory(&pem.Block{Type: blockTypeEncryptSecret, Bytes: id.encryptSecret[:]})...)
	return writeKeyData(config.KeyPath, data)
}

// writeKeyData writes data to path ensuring permissions are appropriate for a key
func writeKeyData(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errs.Wrap(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errs.New("unable to write key to %q: %v", path, err)
	}
	return nil
}
