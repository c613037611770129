// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package pb

import (
	proto "github.com/gogo/protobuf/proto"
)

// AuthorityKind mirrors the routing.AuthorityKind enum.
type AuthorityKind int32

const (
	AuthorityKind_AUTHORITY_INVALID AuthorityKind = 0
	AuthorityKind_CLIENT            AuthorityKind = 1
	AuthorityKind_MANAGED_NODE      AuthorityKind = 2
	AuthorityKind_CLIENT_MANAGER    AuthorityKind = 3
	AuthorityKind_NAE_MANAGER       AuthorityKind = 4
	AuthorityKind_NODE_MANAGER      AuthorityKind = 5
)

var AuthorityKind_name = map[int32]string{
	0: "AUTHORITY_INVALID",
	1: "CLIENT",
	2: "MANAGED_NODE",
	3: "CLIENT_MANAGER",
	4: "NAE_MANAGER",
	5: "NODE_MANAGER",
}

var AuthorityKind_value = map[string]int32{
	"AUTHORITY_INVALID": 0,
	"CLIENT":            1,
	"MANAGED_NODE":      2,
	"CLIENT_MANAGER":    3,
	"NAE_MANAGER":       4,
	"NODE_MANAGER":      5,
}

func (x AuthorityKind) String() string { return proto.EnumName(AuthorityKind_name, int32(x)) }

// DataKind mirrors the routing.DataKind enum.
type DataKind int32

const (
	DataKind_DATA_INVALID    DataKind = 0
	DataKind_IMMUTABLE       DataKind = 1
	DataKind_STRUCTURED      DataKind = 2
	DataKind_PUB_APPENDABLE  DataKind = 3
	DataKind_PRIV_APPENDABLE DataKind = 4
	DataKind_PLAIN           DataKind = 5
)

var DataKind_name = map[int32]string{
	0: "DATA_INVALID",
	1: "IMMUTABLE",
	2: "STRUCTURED",
	3: "PUB_APPENDABLE",
	4: "PRIV_APPENDABLE",
	5: "PLAIN",
}

var DataKind_value = map[string]int32{
	"DATA_INVALID":    0,
	"IMMUTABLE":       1,
	"STRUCTURED":      2,
	"PUB_APPENDABLE":  3,
	"PRIV_APPENDABLE": 4,
	"PLAIN":           5,
}

func (x DataKind) String() string { return proto.EnumName(DataKind_name, int32(x)) }

// FilterMode mirrors the routing.FilterMode enum.
type FilterMode int32

const (
	FilterMode_WHITELIST FilterMode = 0
	FilterMode_BLACKLIST FilterMode = 1
)

var FilterMode_name = map[int32]string{
	0: "WHITELIST",
	1: "BLACKLIST",
}

var FilterMode_value = map[string]int32{
	"WHITELIST": 0,
	"BLACKLIST": 1,
}

func (x FilterMode) String() string { return proto.EnumName(FilterMode_name, int32(x)) }

// RequestKind mirrors the routing.RequestKind enum.
type RequestKind int32

const (
	RequestKind_REQUEST_INVALID  RequestKind = 0
	RequestKind_GET              RequestKind = 1
	RequestKind_PUT              RequestKind = 2
	RequestKind_POST             RequestKind = 3
	RequestKind_DELETE           RequestKind = 4
	RequestKind_APPEND           RequestKind = 5
	RequestKind_GET_ACCOUNT_INFO RequestKind = 6
	RequestKind_REFRESH          RequestKind = 7
)

var RequestKind_name = map[int32]string{
	0: "REQUEST_INVALID",
	1: "GET",
	2: "PUT",
	3: "POST",
	4: "DELETE",
	5: "APPEND",
	6: "GET_ACCOUNT_INFO",
	7: "REFRESH",
}

var RequestKind_value = map[string]int32{
	"REQUEST_INVALID":  0,
	"GET":              1,
	"PUT":              2,
	"POST":             3,
	"DELETE":           4,
	"APPEND":           5,
	"GET_ACCOUNT_INFO": 6,
	"REFRESH":          7,
}

func (x RequestKind) String() string { return proto.EnumName(RequestKind_name, int32(x)) }

// ClientErrorCode mirrors the routing.ClientErrorCode enum.
type ClientErrorCode int32

const (
	ClientErrorCode_NETWORK_OTHER     ClientErrorCode = 0
	ClientErrorCode_NO_SUCH_DATA      ClientErrorCode = 1
	ClientErrorCode_DATA_EXISTS       ClientErrorCode = 2
	ClientErrorCode_LOW_BALANCE       ClientErrorCode = 3
	ClientErrorCode_NO_SUCH_ACCOUNT   ClientErrorCode = 4
	ClientErrorCode_ACCESS_DENIED     ClientErrorCode = 5
	ClientErrorCode_INVALID_OPERATION ClientErrorCode = 6
	ClientErrorCode_INVALID_SUCCESSOR ClientErrorCode = 7
	ClientErrorCode_LIMIT_EXCEEDED    ClientErrorCode = 8
)

var ClientErrorCode_name = map[int32]string{
	0: "NETWORK_OTHER",
	1: "NO_SUCH_DATA",
	2: "DATA_EXISTS",
	3: "LOW_BALANCE",
	4: "NO_SUCH_ACCOUNT",
	5: "ACCESS_DENIED",
	6: "INVALID_OPERATION",
	7: "INVALID_SUCCESSOR",
	8: "LIMIT_EXCEEDED",
}

var ClientErrorCode_value = map[string]int32{
	"NETWORK_OTHER":     0,
	"NO_SUCH_DATA":      1,
	"DATA_EXISTS":       2,
	"LOW_BALANCE":       3,
	"NO_SUCH_ACCOUNT":   4,
	"ACCESS_DENIED":     5,
	"INVALID_OPERATION": 6,
	"INVALID_SUCCESSOR": 7,
	"LIMIT_EXCEEDED":    8,
}

func (x ClientErrorCode) String() string { return proto.EnumName(ClientErrorCode_name, int32(x)) }

// ResponseKind mirrors the routing.ResponseKind enum.
type ResponseKind int32

const (
	ResponseKind_RESPONSE_INVALID         ResponseKind = 0
	ResponseKind_GET_SUCCESS              ResponseKind = 1
	ResponseKind_GET_FAILURE              ResponseKind = 2
	ResponseKind_PUT_SUCCESS              ResponseKind = 3
	ResponseKind_PUT_FAILURE              ResponseKind = 4
	ResponseKind_POST_SUCCESS             ResponseKind = 5
	ResponseKind_POST_FAILURE             ResponseKind = 6
	ResponseKind_DELETE_SUCCESS           ResponseKind = 7
	ResponseKind_DELETE_FAILURE           ResponseKind = 8
	ResponseKind_APPEND_SUCCESS           ResponseKind = 9
	ResponseKind_APPEND_FAILURE           ResponseKind = 10
	ResponseKind_GET_ACCOUNT_INFO_SUCCESS ResponseKind = 11
	ResponseKind_GET_ACCOUNT_INFO_FAILURE ResponseKind = 12
)

var ResponseKind_name = map[int32]string{
	0:  "RESPONSE_INVALID",
	1:  "GET_SUCCESS",
	2:  "GET_FAILURE",
	3:  "PUT_SUCCESS",
	4:  "PUT_FAILURE",
	5:  "POST_SUCCESS",
	6:  "POST_FAILURE",
	7:  "DELETE_SUCCESS",
	8:  "DELETE_FAILURE",
	9:  "APPEND_SUCCESS",
	10: "APPEND_FAILURE",
	11: "GET_ACCOUNT_INFO_SUCCESS",
	12: "GET_ACCOUNT_INFO_FAILURE",
}

var ResponseKind_value = map[string]int32{
	"RESPONSE_INVALID":         0,
	"GET_SUCCESS":              1,
	"GET_FAILURE":              2,
	"PUT_SUCCESS":              3,
	"PUT_FAILURE":              4,
	"POST_SUCCESS":             5,
	"POST_FAILURE":             6,
	"DELETE_SUCCESS":           7,
	"DELETE_FAILURE":           8,
	"APPEND_SUCCESS":           9,
	"APPEND_FAILURE":           10,
	"GET_ACCOUNT_INFO_SUCCESS": 11,
	"GET_ACCOUNT_INFO_FAILURE": 12,
}

func (x ResponseKind) String() string { return proto.EnumName(ResponseKind_name, int32(x)) }

// FrameKind mirrors the routing.FrameKind enum.
type FrameKind int32

const (
	FrameKind_FRAME_INVALID FrameKind = 0
	FrameKind_HELLO         FrameKind = 1
	FrameKind_ROUTED        FrameKind = 2
)

var FrameKind_name = map[int32]string{
	0: "FRAME_INVALID",
	1: "HELLO",
	2: "ROUTED",
}

var FrameKind_value = map[string]int32{
	"FRAME_INVALID": 0,
	"HELLO":         1,
	"ROUTED":        2,
}

func (x FrameKind) String() string { return proto.EnumName(FrameKind_name, int32(x)) }

// PublicID is the routing.PublicID protobuf message.
type PublicID struct {
	Name       []byte `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	SignKey    []byte `protobuf:"bytes,2,opt,name=sign_key,json=signKey,proto3" json:"sign_key,omitempty"`
	EncryptKey []byte `protobuf:"bytes,3,opt,name=encrypt_key,json=encryptKey,proto3" json:"encrypt_key,omitempty"`
}

func (m *PublicID) Reset()         { *m = PublicID{} }
func (m *PublicID) String() string { return proto.CompactTextString(m) }
func (*PublicID) ProtoMessage()    {}

// Authority is the routing.Authority protobuf message.
type Authority struct {
	Kind          AuthorityKind `protobuf:"varint,1,opt,name=kind,proto3,enum=routing.AuthorityKind" json:"kind,omitempty"`
	Name          []byte        `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	ClientKey     []byte        `protobuf:"bytes,3,opt,name=client_key,json=clientKey,proto3" json:"client_key,omitempty"`
	ProxyNodeName []byte        `protobuf:"bytes,4,opt,name=proxy_node_name,json=proxyNodeName,proto3" json:"proxy_node_name,omitempty"`
	PeerID        []byte        `protobuf:"bytes,5,opt,name=peer_id,json=peerId,proto3" json:"peer_id,omitempty"`
}

func (m *Authority) Reset()         { *m = Authority{} }
func (m *Authority) String() string { return proto.CompactTextString(m) }
func (*Authority) ProtoMessage()    {}

// DataIdentifier is the routing.DataIdentifier protobuf message.
type DataIdentifier struct {
	Kind    DataKind `protobuf:"varint,1,opt,name=kind,proto3,enum=routing.DataKind" json:"kind,omitempty"`
	Name    []byte   `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	TypeTag uint64   `protobuf:"varint,3,opt,name=type_tag,json=typeTag,proto3" json:"type_tag,omitempty"`
}

func (m *DataIdentifier) Reset()         { *m = DataIdentifier{} }
func (m *DataIdentifier) String() string { return proto.CompactTextString(m) }
func (*DataIdentifier) ProtoMessage()    {}

// OwnerSignature is the routing.OwnerSignature protobuf message.
type OwnerSignature struct {
	SignKey   []byte `protobuf:"bytes,1,opt,name=sign_key,json=signKey,proto3" json:"sign_key,omitempty"`
	Signature []byte `protobuf:"bytes,2,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *OwnerSignature) Reset()         { *m = OwnerSignature{} }
func (m *OwnerSignature) String() string { return proto.CompactTextString(m) }
func (*OwnerSignature) ProtoMessage()    {}

// ImmutableData is the routing.ImmutableData protobuf message.
type ImmutableData struct {
	Name  []byte `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Value []byte `protobuf:"bytes,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *ImmutableData) Reset()         { *m = ImmutableData{} }
func (m *ImmutableData) String() string { return proto.CompactTextString(m) }
func (*ImmutableData) ProtoMessage()    {}

// StructuredData is the routing.StructuredData protobuf message.
type StructuredData struct {
	Name           []byte            `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	TypeTag        uint64            `protobuf:"varint,2,opt,name=type_tag,json=typeTag,proto3" json:"type_tag,omitempty"`
	Version        uint64            `protobuf:"varint,3,opt,name=version,proto3" json:"version,omitempty"`
	Payload        []byte            `protobuf:"bytes,4,opt,name=payload,proto3" json:"payload,omitempty"`
	CurrentOwners  [][]byte          `protobuf:"bytes,5,rep,name=current_owners,json=currentOwners,proto3" json:"current_owners,omitempty"`
	PreviousOwners [][]byte          `protobuf:"bytes,6,rep,name=previous_owners,json=previousOwners,proto3" json:"previous_owners,omitempty"`
	Signatures     []*OwnerSignature `protobuf:"bytes,7,rep,name=signatures,proto3" json:"signatures,omitempty"`
}

func (m *StructuredData) Reset()         { *m = StructuredData{} }
func (m *StructuredData) String() string { return proto.CompactTextString(m) }
func (*StructuredData) ProtoMessage()    {}

// Filter is the routing.Filter protobuf message.
type Filter struct {
	Mode FilterMode `protobuf:"varint,1,opt,name=mode,proto3,enum=routing.FilterMode" json:"mode,omitempty"`
	Keys [][]byte   `protobuf:"bytes,2,rep,name=keys,proto3" json:"keys,omitempty"`
}

func (m *Filter) Reset()         { *m = Filter{} }
func (m *Filter) String() string { return proto.CompactTextString(m) }
func (*Filter) ProtoMessage()    {}

// AppendedData is the routing.AppendedData protobuf message.
type AppendedData struct {
	Pointer   *DataIdentifier `protobuf:"bytes,1,opt,name=pointer,proto3" json:"pointer,omitempty"`
	SignKey   []byte          `protobuf:"bytes,2,opt,name=sign_key,json=signKey,proto3" json:"sign_key,omitempty"`
	Signature []byte          `protobuf:"bytes,3,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *AppendedData) Reset()         { *m = AppendedData{} }
func (m *AppendedData) String() string { return proto.CompactTextString(m) }
func (*AppendedData) ProtoMessage()    {}

// PrivAppendedData is the routing.PrivAppendedData protobuf message.
type PrivAppendedData struct {
	EncryptKey []byte `protobuf:"bytes,1,opt,name=encrypt_key,json=encryptKey,proto3" json:"encrypt_key,omitempty"`
	Sealed     []byte `protobuf:"bytes,2,opt,name=sealed,proto3" json:"sealed,omitempty"`
}

func (m *PrivAppendedData) Reset()         { *m = PrivAppendedData{} }
func (m *PrivAppendedData) String() string { return proto.CompactTextString(m) }
func (*PrivAppendedData) ProtoMessage()    {}

// AppendableData is the routing.AppendableData protobuf message.
type AppendableData struct {
	Name             []byte              `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Version          uint64              `protobuf:"varint,2,opt,name=version,proto3" json:"version,omitempty"`
	CurrentOwners    [][]byte            `protobuf:"bytes,3,rep,name=current_owners,json=currentOwners,proto3" json:"current_owners,omitempty"`
	PreviousOwners   [][]byte            `protobuf:"bytes,4,rep,name=previous_owners,json=previousOwners,proto3" json:"previous_owners,omitempty"`
	Filter           *Filter             `protobuf:"bytes,5,opt,name=filter,proto3" json:"filter,omitempty"`
	EncryptKey       []byte              `protobuf:"bytes,6,opt,name=encrypt_key,json=encryptKey,proto3" json:"encrypt_key,omitempty"`
	Items            []*AppendedData     `protobuf:"bytes,7,rep,name=items,proto3" json:"items,omitempty"`
	DeletedItems     []*AppendedData     `protobuf:"bytes,8,rep,name=deleted_items,json=deletedItems,proto3" json:"deleted_items,omitempty"`
	PrivItems        []*PrivAppendedData `protobuf:"bytes,9,rep,name=priv_items,json=privItems,proto3" json:"priv_items,omitempty"`
	PrivDeletedItems []*PrivAppendedData `protobuf:"bytes,10,rep,name=priv_deleted_items,json=privDeletedItems,proto3" json:"priv_deleted_items,omitempty"`
	Signatures       []*OwnerSignature   `protobuf:"bytes,11,rep,name=signatures,proto3" json:"signatures,omitempty"`
}

func (m *AppendableData) Reset()         { *m = AppendableData{} }
func (m *AppendableData) String() string { return proto.CompactTextString(m) }
func (*AppendableData) ProtoMessage()    {}

// PlainData is the routing.PlainData protobuf message.
type PlainData struct {
	Name  []byte `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Value []byte `protobuf:"bytes,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *PlainData) Reset()         { *m = PlainData{} }
func (m *PlainData) String() string { return proto.CompactTextString(m) }
func (*PlainData) ProtoMessage()    {}

// Data is the routing.Data protobuf message.
type Data struct {
	Kind       DataKind        `protobuf:"varint,1,opt,name=kind,proto3,enum=routing.DataKind" json:"kind,omitempty"`
	Immutable  *ImmutableData  `protobuf:"bytes,2,opt,name=immutable,proto3" json:"immutable,omitempty"`
	Structured *StructuredData `protobuf:"bytes,3,opt,name=structured,proto3" json:"structured,omitempty"`
	Appendable *AppendableData `protobuf:"bytes,4,opt,name=appendable,proto3" json:"appendable,omitempty"`
	Plain      *PlainData      `protobuf:"bytes,5,opt,name=plain,proto3" json:"plain,omitempty"`
}

func (m *Data) Reset()         { *m = Data{} }
func (m *Data) String() string { return proto.CompactTextString(m) }
func (*Data) ProtoMessage()    {}

// AppendWrapper is the routing.AppendWrapper protobuf message.
type AppendWrapper struct {
	AppendTo  []byte            `protobuf:"bytes,1,opt,name=append_to,json=appendTo,proto3" json:"append_to,omitempty"`
	Version   uint64            `protobuf:"varint,2,opt,name=version,proto3" json:"version,omitempty"`
	Pub       *AppendedData     `protobuf:"bytes,3,opt,name=pub,proto3" json:"pub,omitempty"`
	Priv      *PrivAppendedData `protobuf:"bytes,4,opt,name=priv,proto3" json:"priv,omitempty"`
	SignKey   []byte            `protobuf:"bytes,5,opt,name=sign_key,json=signKey,proto3" json:"sign_key,omitempty"`
	Signature []byte            `protobuf:"bytes,6,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *AppendWrapper) Reset()         { *m = AppendWrapper{} }
func (m *AppendWrapper) String() string { return proto.CompactTextString(m) }
func (*AppendWrapper) ProtoMessage()    {}

// Request is the routing.Request protobuf message.
type Request struct {
	Kind    RequestKind     `protobuf:"varint,1,opt,name=kind,proto3,enum=routing.RequestKind" json:"kind,omitempty"`
	DataID  *DataIdentifier `protobuf:"bytes,2,opt,name=data_id,json=dataId,proto3" json:"data_id,omitempty"`
	Data    *Data           `protobuf:"bytes,3,opt,name=data,proto3" json:"data,omitempty"`
	Wrapper *AppendWrapper  `protobuf:"bytes,4,opt,name=wrapper,proto3" json:"wrapper,omitempty"`
	TypeTag uint64          `protobuf:"varint,5,opt,name=type_tag,json=typeTag,proto3" json:"type_tag,omitempty"`
	Payload []byte          `protobuf:"bytes,6,opt,name=payload,proto3" json:"payload,omitempty"`
}

func (m *Request) Reset()         { *m = Request{} }
func (m *Request) String() string { return proto.CompactTextString(m) }
func (*Request) ProtoMessage()    {}

// ClientError is the routing.ClientError protobuf message.
type ClientError struct {
	Code   ClientErrorCode `protobuf:"varint,1,opt,name=code,proto3,enum=routing.ClientErrorCode" json:"code,omitempty"`
	Detail string          `protobuf:"bytes,2,opt,name=detail,proto3" json:"detail,omitempty"`
}

func (m *ClientError) Reset()         { *m = ClientError{} }
func (m *ClientError) String() string { return proto.CompactTextString(m) }
func (*ClientError) ProtoMessage()    {}

// Response is the routing.Response protobuf message.
type Response struct {
	Kind           ResponseKind    `protobuf:"varint,1,opt,name=kind,proto3,enum=routing.ResponseKind" json:"kind,omitempty"`
	Data           *Data           `protobuf:"bytes,2,opt,name=data,proto3" json:"data,omitempty"`
	DataID         *DataIdentifier `protobuf:"bytes,3,opt,name=data_id,json=dataId,proto3" json:"data_id,omitempty"`
	Error          *ClientError    `protobuf:"bytes,4,opt,name=error,proto3" json:"error,omitempty"`
	DataStored     uint64          `protobuf:"varint,5,opt,name=data_stored,json=dataStored,proto3" json:"data_stored,omitempty"`
	SpaceAvailable uint64          `protobuf:"varint,6,opt,name=space_available,json=spaceAvailable,proto3" json:"space_available,omitempty"`
}

func (m *Response) Reset()         { *m = Response{} }
func (m *Response) String() string { return proto.CompactTextString(m) }
func (*Response) ProtoMessage()    {}

// RoutingMessage is the routing.RoutingMessage protobuf message.
type RoutingMessage struct {
	Src      *Authority `protobuf:"bytes,1,opt,name=src,proto3" json:"src,omitempty"`
	Dst      *Authority `protobuf:"bytes,2,opt,name=dst,proto3" json:"dst,omitempty"`
	ID       []byte     `protobuf:"bytes,3,opt,name=id,proto3" json:"id,omitempty"`
	Request  *Request   `protobuf:"bytes,4,opt,name=request,proto3" json:"request,omitempty"`
	Response *Response  `protobuf:"bytes,5,opt,name=response,proto3" json:"response,omitempty"`
}

func (m *RoutingMessage) Reset()         { *m = RoutingMessage{} }
func (m *RoutingMessage) String() string { return proto.CompactTextString(m) }
func (*RoutingMessage) ProtoMessage()    {}

// MemberSignature is the routing.MemberSignature protobuf message.
type MemberSignature struct {
	Signer    *PublicID `protobuf:"bytes,1,opt,name=signer,proto3" json:"signer,omitempty"`
	Signature []byte    `protobuf:"bytes,2,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *MemberSignature) Reset()         { *m = MemberSignature{} }
func (m *MemberSignature) String() string { return proto.CompactTextString(m) }
func (*MemberSignature) ProtoMessage()    {}

// SignedMessage is the routing.SignedMessage protobuf message.
type SignedMessage struct {
	Message    *RoutingMessage    `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
	Signatures []*MemberSignature `protobuf:"bytes,2,rep,name=signatures,proto3" json:"signatures,omitempty"`
	Cached     bool               `protobuf:"varint,3,opt,name=cached,proto3" json:"cached,omitempty"`
}

func (m *SignedMessage) Reset()         { *m = SignedMessage{} }
func (m *SignedMessage) String() string { return proto.CompactTextString(m) }
func (*SignedMessage) ProtoMessage()    {}

// Hello is the routing.Hello protobuf message.
type Hello struct {
	PublicID  *PublicID `protobuf:"bytes,1,opt,name=public_id,json=publicId,proto3" json:"public_id,omitempty"`
	IsClient  bool      `protobuf:"varint,2,opt,name=is_client,json=isClient,proto3" json:"is_client,omitempty"`
	Signature []byte    `protobuf:"bytes,3,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *Hello) Reset()         { *m = Hello{} }
func (m *Hello) String() string { return proto.CompactTextString(m) }
func (*Hello) ProtoMessage()    {}

// Frame is the routing.Frame protobuf message.
type Frame struct {
	Kind   FrameKind      `protobuf:"varint,1,opt,name=kind,proto3,enum=routing.FrameKind" json:"kind,omitempty"`
	Hello  *Hello         `protobuf:"bytes,2,opt,name=hello,proto3" json:"hello,omitempty"`
	Routed *SignedMessage `protobuf:"bytes,3,opt,name=routed,proto3" json:"routed,omitempty"`
}

func (m *Frame) Reset()         { *m = Frame{} }
func (m *Frame) String() string { return proto.CompactTextString(m) }
func (*Frame) ProtoMessage()    {}

func init() {
	proto.RegisterEnum("routing.AuthorityKind", AuthorityKind_name, AuthorityKind_value)
	proto.RegisterEnum("routing.DataKind", DataKind_name, DataKind_value)
	proto.RegisterEnum("routing.FilterMode", FilterMode_name, FilterMode_value)
	proto.RegisterEnum("routing.RequestKind", RequestKind_name, RequestKind_value)
	proto.RegisterEnum("routing.ClientErrorCode", ClientErrorCode_name, ClientErrorCode_value)
	proto.RegisterEnum("routing.ResponseKind", ResponseKind_name, ResponseKind_value)
	proto.RegisterEnum("routing.FrameKind", FrameKind_name, FrameKind_value)
	proto.RegisterType((*PublicID)(nil), "routing.PublicID")
	proto.RegisterType((*Authority)(nil), "routing.Authority")
	proto.RegisterType((*DataIdentifier)(nil), "routing.DataIdentifier")
	proto.RegisterType((*OwnerSignature)(nil), "routing.OwnerSignature")
	proto.RegisterType((*ImmutableData)(nil), "routing.ImmutableData")
	proto.RegisterType((*StructuredData)(nil), "routing.StructuredData")
	proto.RegisterType((*Filter)(nil), "routing.Filter")
	proto.RegisterType((*AppendedData)(nil), "routing.AppendedData")
	proto.RegisterType((*PrivAppendedData)(nil), "routing.PrivAppendedData")
	proto.RegisterType((*AppendableData)(nil), "routing.AppendableData")
	proto.RegisterType((*PlainData)(nil), "routing.PlainData")
	proto.RegisterType((*Data)(nil), "routing.Data")
	proto.RegisterType((*AppendWrapper)(nil), "routing.AppendWrapper")
	proto.RegisterType((*Request)(nil), "routing.Request")
	proto.RegisterType((*ClientError)(nil), "routing.ClientError")
	proto.RegisterType((*Response)(nil), "routing.Response")
	proto.RegisterType((*RoutingMessage)(nil), "routing.RoutingMessage")
	proto.RegisterType((*MemberSignature)(nil), "routing.MemberSignature")
	proto.RegisterType((*SignedMessage)(nil), "routing.SignedMessage")
	proto.RegisterType((*Hello)(nil), "routing.Hello")
	proto.RegisterType((*Frame)(nil), "routing.Frame")
}
