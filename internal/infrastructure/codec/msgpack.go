// Package codec serializes E2AP PDUs and service model bodies as MessagePack.
package codec

import (
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"

	"github.com/nexran/nexran/internal/domain/e2ap"
)

// Msgpack implements e2ap.Codec. It is safe for concurrent use.
type Msgpack struct {
	handle *codec.MsgpackHandle
}

func NewMsgpack() *Msgpack {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	return &Msgpack{handle: h}
}

// Marshal encodes any value with the shared handle.
func (m *Msgpack) Marshal(v any) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, m.handle).Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

// Unmarshal decodes data into v.
func (m *Msgpack) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty payload", e2ap.ErrMalformed)
	}
	if err := codec.NewDecoderBytes(data, m.handle).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", e2ap.ErrMalformed, err)
	}
	return nil
}

func (m *Msgpack) Encode(pdu e2ap.PDU) ([]byte, error) {
	if pdu == nil {
		return nil, fmt.Errorf("%w: nil pdu", e2ap.ErrMalformed)
	}
	return m.Marshal(pdu)
}

func (m *Msgpack) Decode(kind e2ap.Kind, data []byte) (e2ap.PDU, error) {
	pdu, err := e2ap.NewPDU(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: kind %d", err, kind)
	}
	if err := m.Unmarshal(data, pdu); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return pdu, nil
}
