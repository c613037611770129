// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package routingtable

import (
	"storj.io/routing/pkg/xorname"
)

// addToReplacementCache remembers entry for bucket, keeping the most recent last.
func (table *Table) addToReplacementCache(bucket int, entry Entry) {
	if table.rcBucketSize == 0 {
		return
	}
	entries := table.removeFromReplacementCache(bucket, entry.ID.Name)
	entries = append(entries, entry)
	if len(entries) > table.rcBucketSize {
		copy(entries, entries[1:])
		entries = entries[:len(entries)-1]
	}
	table.replacementCache[bucket] = entries
}

// removeFromReplacementCache drops name from the cache of bucket and returns
// what is left.
func (table *Table) removeFromReplacementCache(bucket int, name xorname.Name) []Entry {
	entries := table.replacementCache[bucket]
	for i, entry := range entries {
		if entry.ID.Name == name {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(table.replacementCache, bucket)
		return nil
	}
	table.replacementCache[bucket] = entries
	return entries
}

// popReplacement takes the entry nearest to self out of the cache of bucket.
func (table *Table) popReplacement(bucket int) (Entry, bool) {
	entries := table.replacementCache[bucket]
	if len(entries) == 0 {
		return Entry{}, false
	}
	nearest := entries[0]
	for _, entry := range entries[1:] {
		if xorname.Closer(entry.ID.Name, nearest.ID.Name, table.self.Name) {
			nearest = entry
		}
	}
	table.removeFromReplacementCache(bucket, nearest.ID.Name)
	return nearest, true
}

// ReplacementCacheLen returns the number of spare contacts kept for bucket.
func (table *Table) ReplacementCacheLen(bucket int) int {
	return len(table.replacementCache[bucket])
}
