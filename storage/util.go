// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package storage

// CloneKey creates a copy of key
func CloneKey(key Key) Key { return append(key[:0:0], key...) }

// CloneValue creates a copy of value
func CloneValue(value Value) Value { return append(value[:0:0], value...) }

// CheckLimit normalizes a List limit.
func CheckLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, ErrLimitExceeded.New("negative limit %d", limit)
	case limit == 0:
		return LookupLimit, nil
	case limit > LookupLimit:
		return 0, ErrLimitExceeded.New("limit %d above %d", limit, LookupLimit)
	}
	return limit, nil
}
