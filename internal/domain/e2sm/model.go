package e2sm

import (
	"errors"

	"github.com/nexran/nexran/internal/domain/e2ap"
)

var (
	ErrNotSupported      = errors.New("operation not supported by service model")
	ErrUnknownModel      = errors.New("unknown service model")
	ErrDuplicateFunction = errors.New("function id already registered")
	ErrWrongModel        = errors.New("payload belongs to a different service model")
)

// Payload is any value owned by a service model. ModelOID names the owner so
// the engine can find the model that encodes or decodes it.
type Payload interface {
	ModelOID() string
}

// EventTrigger is a subscription trigger definition.
type EventTrigger interface {
	Payload
}

// Control is a control request body.
type Control interface {
	Payload
}

// Indication is a decoded indication body.
type Indication interface {
	Payload
}

// ControlOutcome is a decoded control ack or failure body.
type ControlOutcome interface {
	Payload
}

// Action is one requested subscription action. Definition may be nil.
type Action struct {
	ID         int64
	Type       e2ap.ActionType
	Definition Payload
}

// EncodedControl holds the byte blobs a control request carries.
type EncodedControl struct {
	Header        []byte
	Message       []byte
	CallProcessID []byte
}

// Model is a pluggable service model. Implementations embed Unimplemented and
// override the capabilities they support.
type Model interface {
	Name() string
	OID() string
	FunctionID() e2ap.FunctionID

	EncodeEventTrigger(trigger EventTrigger) ([]byte, error)
	EncodeActionDefinition(action Action) ([]byte, error)
	EncodeControl(control Control) (EncodedControl, error)
	DecodeIndication(trigger EventTrigger, header, message []byte) (Indication, error)
	DecodeControlOutcome(control Control, outcome []byte) (ControlOutcome, error)
}

// Unimplemented rejects every capability.
type Unimplemented struct{}

func (Unimplemented) EncodeEventTrigger(EventTrigger) ([]byte, error) {
	return nil, ErrNotSupported
}

// EncodeActionDefinition returns an empty definition; most actions carry none.
func (Unimplemented) EncodeActionDefinition(Action) ([]byte, error) {
	return nil, nil
}

func (Unimplemented) EncodeControl(Control) (EncodedControl, error) {
	return EncodedControl{}, ErrNotSupported
}

func (Unimplemented) DecodeIndication(EventTrigger, []byte, []byte) (Indication, error) {
	return nil, ErrNotSupported
}

func (Unimplemented) DecodeControlOutcome(Control, []byte) (ControlOutcome, error) {
	return nil, ErrNotSupported
}

// EncodeActions encodes every action's definition with m.
func EncodeActions(m Model, actions []Action) ([]e2ap.Action, error) {
	out := make([]e2ap.Action, 0, len(actions))
	for _, a := range actions {
		def, err := m.EncodeActionDefinition(a)
		if err != nil {
			return nil, err
		}
		out = append(out, e2ap.Action{ID: a.ID, Type: a.Type, Definition: def})
	}
	return out, nil
}
