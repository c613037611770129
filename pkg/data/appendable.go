// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package data

import (
	"bytes"

	"storj.io/routing/pkg/identity"
	"storj.io/routing/pkg/pb"
	"storj.io/routing/pkg/xorname"
)

// AppendedData points at another data item and is signed by its appender.
type AppendedData struct {
	Pointer   Identifier
	SignKey   identity.SignKey
	Signature []byte
}

// NewAppendedData creates an item pointing at pointer signed by appender.
func NewAppendedData(appender *identity.FullID, pointer Identifier) AppendedData {
	return AppendedData{
		Pointer:   pointer,
		SignKey:   appender.Public().SignKey,
		Signature: appender.Sign(mustMarshal(identifierToPB(pointer))),
	}
}

// Verify checks the signature of the appender.
func (item AppendedData) Verify() error {
	if !identity.VerifyKey(item.SignKey, mustMarshal(identifierToPB(item.Pointer)), item.Signature) {
		return ErrValidation.New("invalid appended data signature")
	}
	return nil
}

// Equal compares two appended items.
func (item AppendedData) Equal(other AppendedData) bool {
	return item.Pointer == other.Pointer && item.SignKey == other.SignKey &&
		bytes.Equal(item.Signature, other.Signature)
}

// PrivAppendedData is an AppendedData sealed for the owner of private
// appendable data. EncryptKey is the appender's public encryption key.
type PrivAppendedData struct {
	EncryptKey identity.EncryptKey
	Sealed     []byte
}

// Equal compares two sealed items.
func (item PrivAppendedData) Equal(other PrivAppendedData) bool {
	return item.EncryptKey == other.EncryptKey && bytes.Equal(item.Sealed, other.Sealed)
}

func (item PrivAppendedData) validate() error {
	if item.EncryptKey == (identity.EncryptKey{}) {
		return ErrValidation.New("sealed item without encryption key")
	}
	if len(item.Sealed) < identity.SealOverhead {
		return ErrValidation.New("sealed item too short")
	}
	return nil
}

// SealAppendedData encrypts item for the owner of private appendable data.
func SealAppendedData(appender *identity.FullID, to identity.EncryptKey, item AppendedData) (PrivAppendedData, error) {
	sealed, err := appender.Seal(to, mustMarshal(appendedToPB(&item)))
	if err != nil {
		return PrivAppendedData{}, ErrValidation.Wrap(err)
	}
	return PrivAppendedData{EncryptKey: appender.Public().EncryptKey, Sealed: sealed}, nil
}

// OpenAppendedData decrypts an item sealed for owner.
func OpenAppendedData(owner *identity.FullID, item PrivAppendedData) (AppendedData, error) {
	plain, err := owner.Open(item.EncryptKey, item.Sealed)
	if err != nil {
		return AppendedData{}, ErrValidation.Wrap(err)
	}
	var m pb.AppendedData
	if err := pb.Unmarshal(plain, &m); err != nil {
		return AppendedData{}, ErrValidation.Wrap(err)
	}
	return appendedFromPB(&m)
}

// AppendWrapper carries one item to append, signed by the appender.
// Exactly one of Pub and Priv is set.
type AppendWrapper struct {
	AppendTo  xorname.Name
	Version   uint64
	Pub       *AppendedData
	Priv      *PrivAppendedData
	SignKey   identity.SignKey
	Signature []byte
}

// NewPubAppendWrapper wraps item for appending to version of the public
// appendable data named to.
func NewPubAppendWrapper(appender *identity.FullID, to xorname.Name, version uint64, item AppendedData) AppendWrapper {
	w := AppendWrapper{AppendTo: to, Version: version, Pub: &item, SignKey: appender.Public().SignKey}
	w.Signature = appender.Sign(w.SigningBytes())
	return w
}

// NewPrivAppendWrapper wraps a sealed item for appending to version of the
// private appendable data named to.
func NewPrivAppendWrapper(appender *identity.FullID, to xorname.Name, version uint64, item PrivAppendedData) AppendWrapper {
	w := AppendWrapper{AppendTo: to, Version: version, Priv: &item, SignKey: appender.Public().SignKey}
	w.Signature = appender.Sign(w.SigningBytes())
	return w
}

// SigningBytes is everything the appender signs.
func (w AppendWrapper) SigningBytes() []byte {
	m := WrapperToPB(&w)
	m.Signature = nil
	return mustMarshal(m)
}

// Verify checks the appender signature.
func (w AppendWrapper) Verify() error {
	if (w.Pub == nil) == (w.Priv == nil) {
		return ErrValidation.New("wrapper must hold exactly one item")
	}
	if !identity.VerifyKey(w.SignKey, w.SigningBytes(), w.Signature) {
		return ErrValidation.New("invalid wrapper signature")
	}
	return nil
}

// checkAppend holds the checks shared by both appendable forms.
func checkAppend(name xorname.Name, version uint64, filter Filter, w AppendWrapper) error {
	if w.AppendTo != name {
		return ErrValidation.New("wrapper targets %s, not %s", w.AppendTo.Short(), name.Short())
	}
	if w.Version != version {
		return ErrValidation.New("wrapper version %d, data version %d", w.Version, version)
	}
	if err := w.Verify(); err != nil {
		return err
	}
	if !filter.Allows(w.SignKey) {
		return ErrValidation.New("appender %s rejected by filter", w.SignKey)
	}
	return nil
}

// PubAppendableData is owned data whose items anyone passing the filter may
// append to.
type PubAppendableData struct {
	XorName        xorname.Name
	Version        uint64
	CurrentOwners  []identity.SignKey
	PreviousOwners []identity.SignKey
	Filter         Filter
	DeletedItems   []AppendedData
	Items          []AppendedData
	Signatures     []OwnerSignature
}

// Name implements Data.
func (d *PubAppendableData) Name() xorname.Name { return d.XorName }

// Identifier implements Data.
func (d *PubAppendableData) Identifier() Identifier {
	return Identifier{Kind: KindPubAppendable, Name: d.XorName}
}

// Size implements Data.
func (d *PubAppendableData) Size() int { return encodedSize(d) }

// SigningBytes covers everything except the items and signatures, so
// appends do not need owner signatures.
func (d *PubAppendableData) SigningBytes() []byte {
	m := pubAppendableToPB(d)
	m.Items, m.Signatures = nil, nil
	return mustMarshal(m)
}

// Sign adds the signature of owner.
func (d *PubAppendableData) Sign(owner *identity.FullID) {
	d.Signatures = addSignature(d.Signatures, owner, d.SigningBytes())
}

func (d *PubAppendableData) owned() owned {
	return owned{d.Version, d.CurrentOwners, d.PreviousOwners, d.SigningBytes(), d.Signatures}
}

// Validate implements Data.
func (d *PubAppendableData) Validate() error {
	if err := checkSize(d, MaxPubAppendableDataSizeInBytes); err != nil {
		return err
	}
	return validateOwned(d.owned())
}

// Clone returns a deep copy.
func (d *PubAppendableData) Clone() *PubAppendableData {
	clone := *d
	clone.CurrentOwners = append([]identity.SignKey(nil), d.CurrentOwners...)
	clone.PreviousOwners = append([]identity.SignKey(nil), d.PreviousOwners...)
	clone.Filter.Keys = append([]identity.SignKey(nil), d.Filter.Keys...)
	clone.DeletedItems = append([]AppendedData(nil), d.DeletedItems...)
	clone.Items = append([]AppendedData(nil), d.Items...)
	clone.Signatures = append([]OwnerSignature(nil), d.Signatures...)
	return &clone
}

func containsItem(items []AppendedData, item AppendedData) bool {
	for _, it := range items {
		if it.Equal(item) {
			return true
		}
	}
	return false
}

// Append adds the wrapped item. On error d is unchanged.
func (d *PubAppendableData) Append(w AppendWrapper) (_ Outcome, err error) {
	defer mon.Task()(nil)(&err)
	if w.Pub == nil {
		return Applied, ErrValidation.New("public appendable data requires a public item")
	}
	if err := checkAppend(d.XorName, d.Version, d.Filter, w); err != nil {
		return Applied, err
	}
	item := *w.Pub
	if err := item.Verify(); err != nil {
		return Applied, err
	}
	if containsItem(d.Items, item) || containsItem(d.DeletedItems, item) {
		return Duplicate, nil
	}

	next := d.Clone()
	next.Items = append(next.Items, item)
	if err := checkSize(next, MaxPubAppendableDataSizeInBytes); err != nil {
		return Applied, err
	}
	d.Items = next.Items
	return Applied, nil
}

// ValidateSuccessor checks an owner signed update of d.
func (d *PubAppendableData) ValidateSuccessor(next *PubAppendableData) (Outcome, error) {
	if next.XorName != d.XorName {
		return Applied, ErrValidation.New("successor of %s has a different identifier", d.Identifier())
	}
	if err := checkSize(next, MaxPubAppendableDataSizeInBytes); err != nil {
		return Applied, err
	}
	return checkSuccessor(d.owned(), next.owned())
}

// Update replaces the owned part of d with next. Items of both are merged
// and items deleted by next are dropped. On error d is unchanged.
func (d *PubAppendableData) Update(next *PubAppendableData) (Outcome, error) {
	outcome, err := d.ValidateSuccessor(next)
	if err != nil || outcome == Duplicate {
		return outcome, err
	}

	updated := next.Clone()
	updated.Items = nil
	for _, item := range append(append([]AppendedData(nil), d.Items...), next.Items...) {
		if !containsItem(updated.Items, item) && !containsItem(updated.DeletedItems, item) {
			updated.Items = append(updated.Items, item)
		}
	}
	if err := checkSize(updated, MaxPubAppendableDataSizeInBytes); err != nil {
		return Applied, err
	}
	*d = *updated
	return Applied, nil
}

// PrivAppendableData is appendable data whose items are sealed for its
// owner's EncryptKey.
type PrivAppendableData struct {
	XorName        xorname.Name
	Version        uint64
	CurrentOwners  []identity.SignKey
	PreviousOwners []identity.SignKey
	Filter         Filter
	EncryptKey     identity.EncryptKey
	DeletedItems   []PrivAppendedData
	Items          []PrivAppendedData
	Signatures     []OwnerSignature
}

// Name implements Data.
func (d *PrivAppendableData) Name() xorname.Name { return d.XorName }

// Identifier implements Data.
func (d *PrivAppendableData) Identifier() Identifier {
	return Identifier{Kind: KindPrivAppendable, Name: d.XorName}
}

// Size implements Data.
func (d *PrivAppendableData) Size() int { return encodedSize(d) }

// SigningBytes covers everything except the items and signatures.
func (d *PrivAppendableData) SigningBytes() []byte {
	m := privAppendableToPB(d)
	m.PrivItems, m.Signatures = nil, nil
	return mustMarshal(m)
}

// Sign adds the signature of owner.
func (d *PrivAppendableData) Sign(owner *identity.FullID) {
	d.Signatures = addSignature(d.Signatures, owner, d.SigningBytes())
}

func (d *PrivAppendableData) owned() owned {
	return owned{d.Version, d.CurrentOwners, d.PreviousOwners, d.SigningBytes(), d.Signatures}
}

// Validate implements Data.
func (d *PrivAppendableData) Validate() error {
	if err := checkSize(d, MaxPrivAppendableDataSizeInBytes); err != nil {
		return err
	}
	return validateOwned(d.owned())
}

// Clone returns a deep copy.
func (d *PrivAppendableData) Clone() *PrivAppendableData {
	clone := *d
	clone.CurrentOwners = append([]identity.SignKey(nil), d.CurrentOwners...)
	clone.PreviousOwners = append([]identity.SignKey(nil), d.PreviousOwners...)
	clone.Filter.Keys = append([]identity.SignKey(nil), d.Filter.Keys...)
	clone.DeletedItems = append([]PrivAppendedData(nil), d.DeletedItems...)
	clone.Items = append([]PrivAppendedData(nil), d.Items...)
	clone.Signatures = append([]OwnerSignature(nil), d.Signatures...)
	return &clone
}

func containsPrivItem(items []PrivAppendedData, item PrivAppendedData) bool {
	for _, it := range items {
		if it.Equal(item) {
			return true
		}
	}
	return false
}

// Append adds the wrapped sealed item. The item is checked structurally
// only; it can not be opened without the owner's key. On error d is
// unchanged.
func (d *PrivAppendableData) Append(w AppendWrapper) (_ Outcome, err error) {
	defer mon.Task()(nil)(&err)
	if w.Priv == nil {
		return Applied, ErrValidation.New("private appendable data requires a sealed item")
	}
	if err := checkAppend(d.XorName, d.Version, d.Filter, w); err != nil {
		return Applied, err
	}
	item := *w.Priv
	if err := item.validate(); err != nil {
		return Applied, err
	}
	if containsPrivItem(d.Items, item) || containsPrivItem(d.DeletedItems, item) {
		return Duplicate, nil
	}

	next := d.Clone()
	next.Items = append(next.Items, item)
	if err := checkSize(next, MaxPrivAppendableDataSizeInBytes); err != nil {
		return Applied, err
	}
	d.Items = next.Items
	return Applied, nil
}

// ValidateSuccessor checks an owner signed update of d.
func (d *PrivAppendableData) ValidateSuccessor(next *PrivAppendableData) (Outcome, error) {
	if next.XorName != d.XorName {
		return Applied, ErrValidation.New("successor of %s has a different identifier", d.Identifier())
	}
	if err := checkSize(next, MaxPrivAppendableDataSizeInBytes); err != nil {
		return Applied, err
	}
	return checkSuccessor(d.owned(), next.owned())
}

// Update replaces the owned part of d with next, merging items.
// On error d is unchanged.
func (d *PrivAppendableData) Update(next *PrivAppendableData) (Outcome, error) {
	outcome, err := d.ValidateSuccessor(next)
	if err != nil || outcome == Duplicate {
		return outcome, err
	}

	updated := next.Clone()
	updated.Items = nil
	for _, item := range append(append([]PrivAppendedData(nil), d.Items...), next.Items...) {
		if !containsPrivItem(updated.Items, item) && !containsPrivItem(updated.DeletedItems, item) {
			updated.Items = append(updated.Items, item)
		}
	}
	if err := checkSize(updated, MaxPrivAppendableDataSizeInBytes); err != nil {
		return Applied, err
	}
	*d = *updated
	return Applied, nil
}
