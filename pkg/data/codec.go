// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package data

import (
	"fmt"

	proto "github.com/gogo/protobuf/proto"

	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
)

// mustMarshal encodes messages built by this package, which always encode.
func mustMarshal(m proto.Message) []byte {
	data, err := proto.Marshal(m)
	if err != nil {
		panic(err)
	}
	return data
}

func encodedSize(d Data) int { return proto.Size(ToPB(d)) }

// Encode serializes d.
func Encode(d Data) ([]byte, error) {
	return pb.Marshal(ToPB(d))
}

// Decode deserializes data produced by Encode.
func Decode(buf []byte) (Data, error) {
	var m pb.Data
	if err := pb.Unmarshal(buf, &m); err != nil {
		return nil, ErrValidation.Wrap(err)
	}
	return FromPB(&m)
}

// ToPB converts d to its wire form.
func ToPB(d Data) *pb.Data {
	switch d := d.(type) {
	case *ImmutableData:
		return &pb.Data{Kind: pb.DataKind_IMMUTABLE, Immutable: &pb.ImmutableData{Name: d.XorName.Bytes(), Value: d.Value}}
	case *StructuredData:
		return &pb.Data{Kind: pb.DataKind_STRUCTURED, Structured: structuredToPB(d)}
	case *PubAppendableData:
		return &pb.Data{Kind: pb.DataKind_PUB_APPENDABLE, Appendable: pubAppendableToPB(d)}
	case *PrivAppendableData:
		return &pb.Data{Kind: pb.DataKind_PRIV_APPENDABLE, Appendable: privAppendableToPB(d)}
	case *PlainData:
		return &pb.Data{Kind: pb.DataKind_PLAIN, Plain: &pb.PlainData{Name: d.XorName.Bytes(), Value: d.Value}}
	default:
		panic(fmt.Sprintf("unhandled data %T", d))
	}
}

// FromPB converts the wire form into Data.
func FromPB(m *pb.Data) (Data, error) {
	if m == nil {
		return nil, ErrValidation.New("missing data")
	}
	switch m.Kind {
	case pb.DataKind_IMMUTABLE:
		if m.Immutable == nil {
			break
		}
		name, err := nameFromPB(m.Immutable.Name)
		if err != nil {
			return nil, err
		}
		return &ImmutableData{XorName: name, Value: m.Immutable.Value}, nil
	case pb.DataKind_STRUCTURED:
		if m.Structured == nil {
			break
		}
		return structuredFromPB(m.Structured)
	case pb.DataKind_PUB_APPENDABLE:
		if m.Appendable == nil {
			break
		}
		return pubAppendableFromPB(m.Appendable)
	case pb.DataKind_PRIV_APPENDABLE:
		if m.Appendable == nil {
			break
		}
		return privAppendableFromPB(m.Appendable)
	case pb.DataKind_PLAIN:
		if m.Plain == nil {
			break
		}
		name, err := nameFromPB(m.Plain.Name)
		if err != nil {
			return nil, err
		}
		return &PlainData{XorName: name, Value: m.Plain.Value}, nil
	}
	return nil, ErrValidation.New("malformed %v data", m.Kind)
}

// IdentifierToPB converts id to its wire form.
func IdentifierToPB(id Identifier) *pb.DataIdentifier {
	return identifierToPB(id)
}

// IdentifierFromPB converts the wire form into an Identifier.
func IdentifierFromPB(m *pb.DataIdentifier) (Identifier, error) {
	if m == nil {
		return Identifier{}, ErrValidation.New("missing data identifier")
	}
	name, err := nameFromPB(m.Name)
	if err != nil {
		return Identifier{}, err
	}
	switch m.Kind {
	case pb.DataKind_IMMUTABLE, pb.DataKind_STRUCTURED, pb.DataKind_PUB_APPENDABLE,
		pb.DataKind_PRIV_APPENDABLE, pb.DataKind_PLAIN:
	default:
		return Identifier{}, ErrValidation.New("unknown data kind %v", m.Kind)
	}
	return Identifier{Kind: Kind(m.Kind), Name: name, TypeTag: m.TypeTag}, nil
}

func identifierToPB(id Identifier) *pb.DataIdentifier {
	return &pb.DataIdentifier{Kind: pb.DataKind(id.Kind), Name: id.Name.Bytes(), TypeTag: id.TypeTag}
}

// WrapperToPB converts w to its wire form.
func WrapperToPB(w *AppendWrapper) *pb.AppendWrapper {
	m := &pb.AppendWrapper{
		AppendTo:  w.AppendTo.Bytes(),
		Version:   w.Version,
		SignKey:   append([]byte(nil), w.SignKey[:]...),
		Signature: w.Signature,
	}
	if w.Pub != nil {
		m.Pub = appendedToPB(w.Pub)
	}
	if w.Priv != nil {
		m.Priv = privAppendedToPB(w.Priv)
	}
	return m
}

// WrapperFromPB converts the wire form into an AppendWrapper.
func WrapperFromPB(m *pb.AppendWrapper) (AppendWrapper, error) {
	if m == nil {
		return AppendWrapper{}, ErrValidation.New("missing append wrapper")
	}
	to, err := nameFromPB(m.AppendTo)
	if err != nil {
		return AppendWrapper{}, err
	}
	key, err := keyFromPB(m.SignKey)
	if err != nil {
		return AppendWrapper{}, err
	}
	w := AppendWrapper{AppendTo: to, Version: m.Version, SignKey: key, Signature: m.Signature}
	if m.Pub != nil {
		item, err := appendedFromPB(m.Pub)
		if err != nil {
			return AppendWrapper{}, err
		}
		w.Pub = &item
	}
	if m.Priv != nil {
		item, err := privAppendedFromPB(m.Priv)
		if err != nil {
			return AppendWrapper{}, err
		}
		w.Priv = &item
	}
	return w, nil
}

func nameFromPB(b []byte) (xorname.Name, error) {
	name, err := xorname.FromBytes(b)
	return name, ErrValidation.Wrap(err)
}

func keyFromPB(b []byte) (identity.SignKey, error) {
	key, err := identity.SignKeyFromBytes(b)
	return key, ErrValidation.Wrap(err)
}

func keysToPB(keys []identity.SignKey) [][]byte {
	if len(keys) == 0 {
		return nil
	}
	result := make([][]byte, len(keys))
	for i, key := range keys {
		result[i] = append([]byte(nil), key[:]...)
	}
	return result
}

func keysFromPB(keys [][]byte) ([]identity.SignKey, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	result := make([]identity.SignKey, len(keys))
	for i, b := range keys {
		key, err := keyFromPB(b)
		if err != nil {
			return nil, err
		}
		result[i] = key
	}
	return result, nil
}

func signaturesToPB(signatures []OwnerSignature) []*pb.OwnerSignature {
	if len(signatures) == 0 {
		return nil
	}
	result := make([]*pb.OwnerSignature, len(signatures))
	for i, sig := range signatures {
		result[i] = &pb.OwnerSignature{SignKey: append([]byte(nil), sig.SignKey[:]...), Signature: sig.Signature}
	}
	return result
}

func signaturesFromPB(signatures []*pb.OwnerSignature) ([]OwnerSignature, error) {
	if len(signatures) == 0 {
		return nil, nil
	}
	result := make([]OwnerSignature, len(signatures))
	for i, sig := range signatures {
		key, err := keyFromPB(sig.SignKey)
		if err != nil {
			return nil, err
		}
		result[i] = OwnerSignature{SignKey: key, Signature: sig.Signature}
	}
	return result, nil
}

func filterToPB(filter Filter) *pb.Filter {
	return &pb.Filter{Mode: pb.FilterMode(filter.Mode), Keys: keysToPB(filter.Keys)}
}

func filterFromPB(m *pb.Filter) (Filter, error) {
	if m == nil {
		return Filter{}, nil
	}
	keys, err := keysFromPB(m.Keys)
	if err != nil {
		return Filter{}, err
	}
	switch m.Mode {
	case pb.FilterMode_WHITELIST:
		return Filter{Mode: Whitelist, Keys: keys}, nil
	case pb.FilterMode_BLACKLIST:
		return Filter{Mode: Blacklist, Keys: keys}, nil
	default:
		return Filter{}, ErrValidation.New("unknown filter mode %v", m.Mode)
	}
}

func structuredToPB(d *StructuredData) *pb.StructuredData {
	return &pb.StructuredData{
		Name:           d.XorName.Bytes(),
		TypeTag:        d.TypeTag,
		Version:        d.Version,
		Payload:        d.Payload,
		CurrentOwners:  keysToPB(d.CurrentOwners),
		PreviousOwners: keysToPB(d.PreviousOwners),
		Signatures:     signaturesToPB(d.Signatures),
	}
}

func structuredFromPB(m *pb.StructuredData) (_ *StructuredData, err error) {
	d := &StructuredData{TypeTag: m.TypeTag, Version: m.Version, Payload: m.Payload}
	if d.XorName, err = nameFromPB(m.Name); err != nil {
		return nil, err
	}
	if d.CurrentOwners, err = keysFromPB(m.CurrentOwners); err != nil {
		return nil, err
	}
	if d.PreviousOwners, err = keysFromPB(m.PreviousOwners); err != nil {
		return nil, err
	}
	if d.Signatures, err = signaturesFromPB(m.Signatures); err != nil {
		return nil, err
	}
	return d, nil
}

func appendedToPB(item *AppendedData) *pb.AppendedData {
	return &pb.AppendedData{
		Pointer:   identifierToPB(item.Pointer),
		SignKey:   append([]byte(nil), item.SignKey[:]...),
		Signature: item.Signature,
	}
}

func appendedFromPB(m *pb.AppendedData) (_ AppendedData, err error) {
	var item AppendedData
	if item.Pointer, err = IdentifierFromPB(m.Pointer); err != nil {
		return item, err
	}
	if item.SignKey, err = keyFromPB(m.SignKey); err != nil {
		return item, err
	}
	item.Signature = m.Signature
	return item, nil
}

func appendedListToPB(items []AppendedData) []*pb.AppendedData {
	if len(items) == 0 {
		return nil
	}
	result := make([]*pb.AppendedData, len(items))
	for i := range items {
		result[i] = appendedToPB(&items[i])
	}
	return result
}

func appendedListFromPB(items []*pb.AppendedData) ([]AppendedData, error) {
	if len(items) == 0 {
		return nil, nil
	}
	result := make([]AppendedData, len(items))
	for i, m := range items {
		item, err := appendedFromPB(m)
		if err != nil {
			return nil, err
		}
		result[i] = item
	}
	return result, nil
}

func privAppendedToPB(item *PrivAppendedData) *pb.PrivAppendedData {
	return &pb.PrivAppendedData{EncryptKey: append([]byte(nil), item.EncryptKey[:]...), Sealed: item.Sealed}
}

func privAppendedFromPB(m *pb.PrivAppendedData) (PrivAppendedData, error) {
	key, err := identity.EncryptKeyFromBytes(m.EncryptKey)
	if err != nil {
		return PrivAppendedData{}, ErrValidation.Wrap(err)
	}
	return PrivAppendedData{EncryptKey: key, Sealed: m.Sealed}, nil
}

func privAppendedListToPB(items []PrivAppendedData) []*pb.PrivAppendedData {
	if len(items) == 0 {
		return nil
	}
	result := make([]*pb.PrivAppendedData, len(items))
	for i := range items {
		result[i] = privAppendedToPB(&items[i])
	}
	return result
}

func privAppendedListFromPB(items []*pb.PrivAppendedData) ([]PrivAppendedData, error) {
	if len(items) == 0 {
		return nil, nil
	}
	result := make([]PrivAppendedData, len(items))
	for i, m := range items {
		item, err := privAppendedFromPB(m)
		if err != nil {
			return nil, err
		}
		result[i] = item
	}
	return result, nil
}

func pubAppendableToPB(d *PubAppendableData) *pb.AppendableData {
	return &pb.AppendableData{
		Name:           d.XorName.Bytes(),
		Version:        d.Version,
		CurrentOwners:  keysToPB(d.CurrentOwners),
		PreviousOwners: keysToPB(d.PreviousOwners),
		Filter:         filterToPB(d.Filter),
		Items:          appendedListToPB(d.Items),
		DeletedItems:   appendedListToPB(d.DeletedItems),
		Signatures:     signaturesToPB(d.Signatures),
	}
}

func privAppendableToPB(d *PrivAppendableData) *pb.AppendableData {
	return &pb.AppendableData{
		Name:             d.XorName.Bytes(),
		Version:          d.Version,
		CurrentOwners:    keysToPB(d.CurrentOwners),
		PreviousOwners:   keysToPB(d.PreviousOwners),
		Filter:           filterToPB(d.Filter),
		EncryptKey:       append([]byte(nil), d.EncryptKey[:]...),
		PrivItems:        privAppendedListToPB(d.Items),
		PrivDeletedItems: privAppendedListToPB(d.DeletedItems),
		Signatures:       signaturesToPB(d.Signatures),
	}
}

type appendableCommon struct {
	name       xorname.Name
	current    []identity.SignKey
	previous   []identity.SignKey
	filter     Filter
	signatures []OwnerSignature
}

func appendableCommonFromPB(m *pb.AppendableData) (c appendableCommon, err error) {
	if c.name, err = nameFromPB(m.Name); err != nil {
		return c, err
	}
	if c.current, err = keysFromPB(m.CurrentOwners); err != nil {
		return c, err
	}
	if c.previous, err = keysFromPB(m.PreviousOwners); err != nil {
		return c, err
	}
	if c.filter, err = filterFromPB(m.Filter); err != nil {
		return c, err
	}
	if c.signatures, err = signaturesFromPB(m.Signatures); err != nil {
		return c, err
	}
	return c, nil
}

func pubAppendableFromPB(m *pb.AppendableData) (*PubAppendableData, error) {
	c, err := appendableCommonFromPB(m)
	if err != nil {
		return nil, err
	}
	d := &PubAppendableData{
		XorName:        c.name,
		Version:        m.Version,
		CurrentOwners:  c.current,
		PreviousOwners: c.previous,
		Filter:         c.filter,
		Signatures:     c.signatures,
	}
	if d.Items, err = appendedListFromPB(m.Items); err != nil {
		return nil, err
	}
	if d.DeletedItems, err = appendedListFromPB(m.DeletedItems); err != nil {
		return nil, err
	}
	return d, nil
}

func privAppendableFromPB(m *pb.AppendableData) (*PrivAppendableData, error) {
	c, err := appendableCommonFromPB(m)
	if err != nil {
		return nil, err
	}
	key, err := identity.EncryptKeyFromBytes(m.EncryptKey)
	if err != nil {
		return nil, ErrValidation.Wrap(err)
	}
	d := &PrivAppendableData{
		XorName:        c.name,
		Version:        m.Version,
		CurrentOwners:  c.current,
		PreviousOwners: c.previous,
		Filter:         c.filter,
		EncryptKey:     key,
		Signatures:     c.signatures,
	}
	if d.Items, err = privAppendedListFromPB(m.PrivItems); err != nil {
		return nil, err
	}
	if d.DeletedItems, err = privAppendedListFromPB(m.PrivDeletedItems); err != nil {
		return nil, err
	}
	return d, nil
}
