package e2ap

import "context"

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_transport.go -package=mocks . Transport,Codec

// Transport delivers envelopes to the E2 termination.
type Transport interface {
	Send(ctx context.Context, env Envelope) error
}

// Codec converts PDUs to and from their packed payload bytes.
type Codec interface {
	Encode(pdu PDU) ([]byte, error)
	Decode(kind Kind, data []byte) (PDU, error)
}

// Receiver consumes inbound envelopes from a transport.
type Receiver func(ctx context.Context, env Envelope)
