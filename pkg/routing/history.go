// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routing

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"storj.io/routing/pkg/message"
	"storj.io/routing/pkg/xorname"
)

// relayHistory remembers which copies of which messages have been seen.
// A copy is identified by the message digest and the set of its signers,
// so distinct member copies of a group message are all relayed.
type relayHistory struct {
	seen *lru.Cache[xorname.Name, struct{}]
}

func newRelayHistory(size int) (*relayHistory, error) {
	seen, err := lru.New[xorname.Name, struct{}](size)
	if err != nil {
		return nil, InterfaceError.Wrap(err)
	}
	return &relayHistory{seen: seen}, nil
}

func copyKey(signed *message.SignedMessage) xorname.Name {
	digest := signed.Message.Digest()
	signers := signed.Signers()
	sort.Slice(signers, func(i, k int) bool { return signers[i].Less(signers[k]) })

	parts := make([][]byte, 0, len(signers)+1)
	parts = append(parts, digest[:])
	for i := range signers {
		parts = append(parts, signers[i][:])
	}
	return xorname.Hash(parts...)
}

// observe records signed and reports whether it was seen before.
func (history *relayHistory) observe(signed *message.SignedMessage) bool {
	seen, _ := history.seen.ContainsOrAdd(copyKey(signed), struct{}{})
	return seen
}

func (history *relayHistory) len() int { return history.seen.Len() }
