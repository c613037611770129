// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package data

import (
	"bytes"

	"storj.io/routing/pkg/identity"
)

// OwnerSignature is a signature over the signing bytes of owned data.
type OwnerSignature struct {
	SignKey   identity.SignKey
	Signature []byte
}

func containsKey(keys []identity.SignKey, key identity.SignKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// sameKeys compares key sets ignoring order and repeats.
func sameKeys(a, b []identity.SignKey) bool {
	for _, k := range a {
		if !containsKey(b, k) {
			return false
		}
	}
	for _, k := range b {
		if !containsKey(a, k) {
			return false
		}
	}
	return true
}

// majoritySigned reports whether more than half of owners produced a valid
// signature over msg. NoOwnerPubKey never counts.
func majoritySigned(owners []identity.SignKey, msg []byte, signatures []OwnerSignature) bool {
	if len(owners) == 0 {
		return false
	}

	valid := map[identity.SignKey]struct{}{}
	for _, sig := range signatures {
		if sig.SignKey == NoOwnerPubKey || !containsKey(owners, sig.SignKey) {
			continue
		}
		if identity.VerifyKey(sig.SignKey, msg, sig.Signature) {
			valid[sig.SignKey] = struct{}{}
		}
	}
	return len(valid) > len(owners)/2
}

// addSignature replaces any signature by the same key.
func addSignature(signatures []OwnerSignature, owner *identity.FullID, msg []byte) []OwnerSignature {
	key := owner.Public().SignKey
	result := signatures[:0:0]
	for _, sig := range signatures {
		if sig.SignKey != key {
			result = append(result, sig)
		}
	}
	return append(result, OwnerSignature{SignKey: key, Signature: owner.Sign(msg)})
}

// signers are the keys whose signatures authorize owned data: the previous
// owners when ownership is being transferred, the current owners otherwise.
func signers(current, previous []identity.SignKey) []identity.SignKey {
	if len(previous) > 0 {
		return previous
	}
	return current
}

// owned is the part of owned data the successor rule looks at.
type owned struct {
	version    uint64
	current    []identity.SignKey
	previous   []identity.SignKey
	signing    []byte
	signatures []OwnerSignature
}

func validateOwned(d owned) error {
	if len(d.current) == 0 {
		return ErrValidation.New("no owners")
	}
	if !majoritySigned(signers(d.current, d.previous), d.signing, d.signatures) {
		return ErrValidation.New("not signed by a majority of owners")
	}
	return nil
}

// checkSuccessor applies the versioning and ownership rule for replacing cur
// with next.
func checkSuccessor(cur, next owned) (Outcome, error) {
	if next.version == cur.version && bytes.Equal(next.signing, cur.signing) {
		return Duplicate, nil
	}
	if containsKey(cur.current, NoOwnerPubKey) {
		return Applied, ErrValidation.New("data without owner can not be mutated")
	}
	if next.version != cur.version+1 {
		return Applied, ErrValidation.New("version %d does not follow %d", next.version, cur.version)
	}
	if len(next.current) == 0 {
		return Applied, ErrValidation.New("no owners")
	}

	if len(next.previous) == 0 {
		if !sameKeys(next.current, cur.current) {
			return Applied, ErrValidation.New("changing owners requires the previous owners")
		}
	} else if !sameKeys(next.previous, cur.current) {
		return Applied, ErrValidation.New("previous owners do not match current owners")
	}

	if !majoritySigned(cur.current, next.signing, next.signatures) {
		return Applied, ErrValidation.New("not signed by a majority of the current owners")
	}
	return Applied, nil
}
