package e2ap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Kind is the transport message type of an E2AP PDU.
type Kind int32

const (
	KindSubscribeRequest  Kind = 12010
	KindSubscribeResponse Kind = 12011
	KindSubscribeFailure  Kind = 12012
	KindDeleteRequest     Kind = 12020
	KindDeleteResponse    Kind = 12021
	KindDeleteFailure     Kind = 12022
	KindControlRequest    Kind = 12040
	KindControlAck        Kind = 12041
	KindControlFailure    Kind = 12042
	KindIndication        Kind = 12050
	KindErrorIndication   Kind = 12070
)

var kindNames = map[Kind]string{
	KindSubscribeRequest:  "subscribe_request",
	KindSubscribeResponse: "subscribe_response",
	KindSubscribeFailure:  "subscribe_failure",
	KindDeleteRequest:     "delete_request",
	KindDeleteResponse:    "delete_response",
	KindDeleteFailure:     "delete_failure",
	KindControlRequest:    "control_request",
	KindControlAck:        "control_ack",
	KindControlFailure:    "control_failure",
	KindIndication:        "indication",
	KindErrorIndication:   "error_indication",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k is a message kind the engine understands.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// NoSubID marks an envelope that carries no transport subscription id.
const NoSubID int32 = -1

// Envelope is the outer frame exchanged with the E2 termination.
type Envelope struct {
	Kind    Kind   `codec:"kind"`
	SubID   int32  `codec:"sub_id"`
	Meid    string `codec:"meid"`
	Xid     string `codec:"xid"`
	Payload []byte `codec:"payload"`
}

// FunctionID identifies a RAN function (service model) on an endpoint.
type FunctionID int64

// MaxRequestorID bounds the requestor id to the 16-bit range peers accept.
const MaxRequestorID = 65535

// TransactionID is the (requestor, instance) pair carried in every request.
type TransactionID struct {
	RequestorID int64 `codec:"requestor_id"`
	InstanceID  int64 `codec:"instance_id"`
}

// Key is the string transaction key used to correlate responses.
func (id TransactionID) Key() string {
	return strconv.FormatInt(id.RequestorID, 10) + "-" + strconv.FormatInt(id.InstanceID, 10)
}

// SubID derives the numeric transport subscription id for id. The mapping is
// deterministic so a restart with the same pair yields the same value.
func (id TransactionID) SubID() int32 {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(id.RequestorID))
	binary.BigEndian.PutUint64(buf[8:], uint64(id.InstanceID))
	h := fnv.New32a()
	_, _ = h.Write(buf[:])
	return int32(h.Sum32() & 0x7fffffff)
}

func (id TransactionID) String() string {
	return id.Key()
}

// ParseKey is the inverse of TransactionID.Key.
func ParseKey(key string) (TransactionID, error) {
	left, right, ok := strings.Cut(key, "-")
	if !ok {
		return TransactionID{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	req, err := strconv.ParseInt(left, 10, 64)
	if err != nil {
		return TransactionID{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	inst, err := strconv.ParseInt(right, 10, 64)
	if err != nil {
		return TransactionID{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return TransactionID{RequestorID: req, InstanceID: inst}, nil
}

var (
	ErrInvalidKey  = errors.New("invalid transaction key")
	ErrUnknownKind = errors.New("unknown message kind")
	ErrMalformed   = errors.New("malformed pdu")
)
