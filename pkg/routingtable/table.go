// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package routingtable keeps a node's view of the XOR name space.
//
// Peers are stored in buckets indexed by the length of the prefix they share
// with the local name. Each bucket holds at most GroupSize peers. When a full
// bucket sees a candidate closer to the local name than its farthest holder,
// the holder is evicted in favour of the candidate. Since a bucket therefore
// always keeps its nearest peers, the local close group is always fully known.
//
// A Table is owned by a single session and is not safe for concurrent use.
package routingtable

import (
	"sort"
	"time"

	"github.com/benbjohnson/clock"

	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/xorname"
)

// Entry is a peer known to the table.
type Entry struct {
	ID       identity.PublicID
	Added    time.Time
	LastSeen time.Time
}

// Outcome describes what Add did with a candidate.
type Outcome int

const (
	// Added means the candidate is now in the table.
	Added Outcome = iota
	// AlreadyPresent means the candidate was known and has been refreshed.
	AlreadyPresent
	// BucketFull means the candidate was kept as a spare only.
	BucketFull
)

// String implements fmt.Stringer.
func (outcome Outcome) String() string {
	switch outcome {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already present"
	case BucketFull:
		return "bucket full"
	default:
		return "unknown"
	}
}

// AddResult is the result of Add.
type AddResult struct {
	Outcome      Outcome
	Bucket       int
	Evicted      *Entry
	GroupChanged bool
}

// RemoveResult is the result of Remove.
type RemoveResult struct {
	Bucket       int
	Promoted     *Entry
	GroupChanged bool
}

// Table is an arena of buckets with an index from name to bucket.
type Table struct {
	self  identity.PublicID
	clock clock.Clock

	buckets          [xorname.Bits + 1][]Entry // sorted nearest to self first
	index            map[xorname.Name]int
	replacementCache map[int][]Entry

	bucketSize   int
	rcBucketSize int
}

// New returns an empty table for self.
func New(self identity.PublicID, config Config, clk clock.Clock) (*Table, error) {
	if err := config.Verify(); err != nil {
		return nil, err
	}
	if err := self.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Table{
		self:             self,
		clock:            clk,
		index:            make(map[xorname.Name]int),
		replacementCache: make(map[int][]Entry),
		bucketSize:       config.GroupSize,
		rcBucketSize:     config.ReplacementCacheSize,
	}, nil
}

// Self returns the identity the table is built around.
func (table *Table) Self() identity.PublicID { return table.self }

// GroupSize returns the configured close group size.
func (table *Table) GroupSize() int { return table.bucketSize }

// Add inserts id into the table.
func (table *Table) Add(id identity.PublicID) (_ AddResult, err error) {
	defer mon.Task()(nil)(&err)

	if id.Name == table.self.Name {
		return AddResult{}, Error.New("can not add self to the routing table")
	}
	if err := id.Validate(); err != nil {
		return AddResult{}, err
	}

	now := table.clock.Now()
	bucket := xorname.BucketIndex(table.self.Name, id.Name)

	if _, ok := table.index[id.Name]; ok {
		entries := table.buckets[bucket]
		for i := range entries {
			if entries[i].ID.Name == id.Name {
				entries[i].LastSeen = now
			}
		}
		return AddResult{Outcome: AlreadyPresent, Bucket: bucket}, nil
	}

	entry := Entry{ID: id, Added: now, LastSeen: now}
	entries := table.buckets[bucket]
	if len(entries) >= table.bucketSize {
		farthest := entries[len(entries)-1]
		if !xorname.Closer(id.Name, farthest.ID.Name, table.self.Name) {
			table.addToReplacementCache(bucket, entry)
			return AddResult{Outcome: BucketFull, Bucket: bucket}, nil
		}

		before := table.groupNames()
		table.remove(bucket, farthest.ID.Name)
		table.addToReplacementCache(bucket, farthest)
		table.insert(bucket, entry)
		mon.Counter("routing_table_evictions").Inc(1)

		return AddResult{
			Outcome:      Added,
			Bucket:       bucket,
			Evicted:      &farthest,
			GroupChanged: !sameNames(before, table.groupNames()),
		}, nil
	}

	before := table.groupNames()
	table.insert(bucket, entry)
	return AddResult{
		Outcome:      Added,
		Bucket:       bucket,
		GroupChanged: !sameNames(before, table.groupNames()),
	}, nil
}

// Remove drops name from the table, promoting a spare contact of the same
// bucket when one is available.
func (table *Table) Remove(name xorname.Name) (RemoveResult, bool) {
	bucket, ok := table.index[name]
	if !ok {
		table.removeFromReplacementCache(xorname.BucketIndex(table.self.Name, name), name)
		return RemoveResult{}, false
	}

	before := table.groupNames()
	table.remove(bucket, name)

	result := RemoveResult{Bucket: bucket}
	if spare, ok := table.popReplacement(bucket); ok {
		table.insert(bucket, spare)
		result.Promoted = &spare
	}
	result.GroupChanged = !sameNames(before, table.groupNames())
	return result, true
}

// Touch refreshes the LastSeen time of a known peer.
func (table *Table) Touch(name xorname.Name) bool {
	bucket, ok := table.index[name]
	if !ok {
		return false
	}
	entries := table.buckets[bucket]
	for i := range entries {
		if entries[i].ID.Name == name {
			entries[i].LastSeen = table.clock.Now()
			return true
		}
	}
	return false
}

func (table *Table) insert(bucket int, entry Entry) {
	entries := table.buckets[bucket]
	at := sort.Search(len(entries), func(i int) bool {
		return xorname.Closer(entry.ID.Name, entries[i].ID.Name, table.self.Name)
	})
	entries = append(entries, Entry{})
	copy(entries[at+1:], entries[at:])
	entries[at] = entry
	table.buckets[bucket] = entries
	table.index[entry.ID.Name] = bucket
	table.removeFromReplacementCache(bucket, entry.ID.Name)
}

func (table *Table) remove(bucket int, name xorname.Name) {
	entries := table.buckets[bucket]
	for i := range entries {
		if entries[i].ID.Name == name {
			table.buckets[bucket] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	delete(table.index, name)
}

// Contains returns whether name is in the table.
func (table *Table) Contains(name xorname.Name) bool {
	_, ok := table.index[name]
	return ok
}

// Get returns the entry for name.
func (table *Table) Get(name xorname.Name) (Entry, bool) {
	bucket, ok := table.index[name]
	if !ok {
		return Entry{}, false
	}
	for _, entry := range table.buckets[bucket] {
		if entry.ID.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}

// Len returns the number of peers in the table.
func (table *Table) Len() int { return len(table.index) }

// BucketLen returns the number of peers in bucket i.
func (table *Table) BucketLen(i int) int {
	if i < 0 || i >= len(table.buckets) {
		return 0
	}
	return len(table.buckets[i])
}

// IsComplete returns whether the table knows enough peers to form a full
// close group around the local node.
func (table *Table) IsComplete() bool { return table.Len() >= table.bucketSize-1 }

// Peers returns every peer, nearest to the local node first.
func (table *Table) Peers() []identity.PublicID {
	peers := make([]identity.PublicID, 0, table.Len())
	for i := len(table.buckets) - 1; i >= 0; i-- {
		for _, entry := range table.buckets[i] {
			peers = append(peers, entry.ID)
		}
	}
	return peers
}

// ClosestPeers returns up to n peers nearest to target, nearest first.
func (table *Table) ClosestPeers(target xorname.Name, n int) []identity.PublicID {
	peers := table.Peers()
	sortByDistance(peers, target)
	if n >= 0 && len(peers) > n {
		peers = peers[:n]
	}
	return peers
}

// ClosestGroup returns up to GroupSize identities among the known peers and
// the local node that are nearest to target, nearest first.
func (table *Table) ClosestGroup(target xorname.Name) []identity.PublicID {
	candidates := append(table.Peers(), table.self)
	sortByDistance(candidates, target)
	if len(candidates) > table.bucketSize {
		candidates = candidates[:table.bucketSize]
	}
	return candidates
}

// OurGroup returns the close group of the local node, including itself.
func (table *Table) OurGroup() []identity.PublicID {
	return table.ClosestGroup(table.self.Name)
}

// IsInMyGroup returns whether name belongs to the close group of the local node.
func (table *Table) IsInMyGroup(name xorname.Name) bool {
	for _, member := range table.OurGroup() {
		if member.Name == name {
			return true
		}
	}
	return false
}

// IsClose returns whether the local node belongs to the close group of target.
func (table *Table) IsClose(target xorname.Name) bool {
	return table.WouldBeInGroup(target, table.self.Name)
}

// WouldBeInGroup returns whether candidate would be part of the close group
// of group, that is whether fewer than GroupSize known names are strictly
// closer to group than candidate.
func (table *Table) WouldBeInGroup(group, candidate xorname.Name) bool {
	closer := 0
	if table.self.Name != candidate && xorname.Closer(table.self.Name, candidate, group) {
		closer++
	}
	for name := range table.index {
		if name != candidate && xorname.Closer(name, candidate, group) {
			closer++
			if closer >= table.bucketSize {
				return false
			}
		}
	}
	return closer < table.bucketSize
}

// NextHop returns the peer nearest to target that is strictly closer to it
// than the local node, ignoring names in exclude.
func (table *Table) NextHop(target xorname.Name, exclude map[xorname.Name]struct{}) (identity.PublicID, bool) {
	best := table.self
	found := false
	for _, peer := range table.Peers() {
		if _, skip := exclude[peer.Name]; skip {
			continue
		}
		if xorname.Closer(peer.Name, best.Name, target) {
			best, found = peer, true
		}
	}
	return best, found
}

func (table *Table) groupNames() []xorname.Name {
	group := table.OurGroup()
	names := make([]xorname.Name, len(group))
	for i, member := range group {
		names[i] = member.Name
	}
	return names
}

func sameNames(a, b []xorname.Name) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[xorname.Name]struct{}, len(a))
	for _, name := range a {
		set[name] = struct{}{}
	}
	for _, name := range b {
		if _, ok := set[name]; !ok {
			return false
		}
	}
	return true
}

func sortByDistance(ids []identity.PublicID, target xorname.Name) {
	sort.Slice(ids, func(i, k int) bool {
		return xorname.Closer(ids[i].Name, ids[k].Name, target)
	})
}
