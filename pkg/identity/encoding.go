// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package identity

import (
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
)

// ToPB converts id to its wire form.
func (id PublicID) ToPB() *pb.PublicID {
	return &pb.PublicID{
		Name:       id.Name.Bytes(),
		SignKey:    append([]byte(nil), id.SignKey[:]...),
		EncryptKey: append([]byte(nil), id.EncryptKey[:]...),
	}
}

// PublicIDFromPB converts the wire form into a validated PublicID.
func PublicIDFromPB(m *pb.PublicID) (PublicID, error) {
	var id PublicID
	if m == nil {
		return id, ErrIdentity.New("missing public id")
	}

	var err error
	if id.Name, err = xorname.FromBytes(m.Name); err != nil {
		return id, ErrIdentity.Wrap(err)
	}
	if id.SignKey, err = SignKeyFromBytes(m.SignKey); err != nil {
		return id, err
	}
	if id.EncryptKey, err = EncryptKeyFromBytes(m.EncryptKey); err != nil {
		return id, err
	}
	return id, id.Validate()
}
