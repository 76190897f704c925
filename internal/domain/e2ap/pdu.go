package e2ap

// ActionType is the RIC service an action requests.
type ActionType int64

const (
	ActionReport  ActionType = 1
	ActionInsert  ActionType = 2
	ActionControl ActionType = 3
	ActionPolicy  ActionType = 4
)

// AckRequest says whether the endpoint should acknowledge a control request.
type AckRequest int64

const (
	AckNone AckRequest = 0
	AckAck  AckRequest = 1
	AckNack AckRequest = 2
)

// Cause is the protocol failure cause pair.
type Cause struct {
	Type  int64 `codec:"type"`
	Value int64 `codec:"value"`
}

// PDU is a decoded E2AP message.
type PDU interface {
	Kind() Kind
	Transaction() TransactionID
}

// Action is an encoded subscription action.
type Action struct {
	ID         int64      `codec:"id"`
	Type       ActionType `codec:"type"`
	Definition []byte     `codec:"definition"`
}

type SubscriptionRequest struct {
	ID           TransactionID `codec:"id"`
	FunctionID   FunctionID    `codec:"function_id"`
	EventTrigger []byte        `codec:"event_trigger"`
	Actions      []Action      `codec:"actions"`
}

type SubscriptionResponse struct {
	ID          TransactionID `codec:"id"`
	FunctionID  FunctionID    `codec:"function_id"`
	Admitted    []int64       `codec:"admitted"`
	NotAdmitted []int64       `codec:"not_admitted"`
}

type SubscriptionFailure struct {
	ID         TransactionID `codec:"id"`
	FunctionID FunctionID    `codec:"function_id"`
	Cause      Cause         `codec:"cause"`
}

type SubscriptionDeleteRequest struct {
	ID         TransactionID `codec:"id"`
	FunctionID FunctionID    `codec:"function_id"`
}

type SubscriptionDeleteResponse struct {
	ID         TransactionID `codec:"id"`
	FunctionID FunctionID    `codec:"function_id"`
}

type SubscriptionDeleteFailure struct {
	ID         TransactionID `codec:"id"`
	FunctionID FunctionID    `codec:"function_id"`
	Cause      Cause         `codec:"cause"`
}

type ControlRequest struct {
	ID            TransactionID `codec:"id"`
	FunctionID    FunctionID    `codec:"function_id"`
	CallProcessID []byte        `codec:"call_process_id"`
	Header        []byte        `codec:"header"`
	Message       []byte        `codec:"message"`
	AckRequest    AckRequest    `codec:"ack_request"`
}

type ControlAck struct {
	ID            TransactionID `codec:"id"`
	FunctionID    FunctionID    `codec:"function_id"`
	CallProcessID []byte        `codec:"call_process_id"`
	Status        int64         `codec:"status"`
	Outcome       []byte        `codec:"outcome"`
}

type ControlFailure struct {
	ID            TransactionID `codec:"id"`
	FunctionID    FunctionID    `codec:"function_id"`
	CallProcessID []byte        `codec:"call_process_id"`
	Cause         Cause         `codec:"cause"`
	Outcome       []byte        `codec:"outcome"`
}

type Indication struct {
	ID            TransactionID `codec:"id"`
	FunctionID    FunctionID    `codec:"function_id"`
	ActionID      int64         `codec:"action_id"`
	SerialNumber  int64         `codec:"serial_number"`
	Type          ActionType    `codec:"type"`
	Header        []byte        `codec:"header"`
	Message       []byte        `codec:"message"`
	CallProcessID []byte        `codec:"call_process_id"`
}

type ErrorIndication struct {
	ID         TransactionID `codec:"id"`
	FunctionID FunctionID    `codec:"function_id"`
	Cause      Cause         `codec:"cause"`
}

func (p *SubscriptionRequest) Kind() Kind { return KindSubscribeRequest }

func (p *SubscriptionRequest) Transaction() TransactionID { return p.ID }

func (p *SubscriptionResponse) Kind() Kind { return KindSubscribeResponse }

func (p *SubscriptionResponse) Transaction() TransactionID { return p.ID }

func (p *SubscriptionFailure) Kind() Kind { return KindSubscribeFailure }

func (p *SubscriptionFailure) Transaction() TransactionID { return p.ID }

func (p *SubscriptionDeleteRequest) Kind() Kind { return KindDeleteRequest }

func (p *SubscriptionDeleteRequest) Transaction() TransactionID { return p.ID }

func (p *SubscriptionDeleteResponse) Kind() Kind { return KindDeleteResponse }

func (p *SubscriptionDeleteResponse) Transaction() TransactionID { return p.ID }

func (p *SubscriptionDeleteFailure) Kind() Kind { return KindDeleteFailure }

func (p *SubscriptionDeleteFailure) Transaction() TransactionID { return p.ID }

func (p *ControlRequest) Kind() Kind { return KindControlRequest }

func (p *ControlRequest) Transaction() TransactionID { return p.ID }

func (p *ControlAck) Kind() Kind { return KindControlAck }

func (p *ControlAck) Transaction() TransactionID { return p.ID }

func (p *ControlFailure) Kind() Kind { return KindControlFailure }

func (p *ControlFailure) Transaction() TransactionID { return p.ID }

func (p *Indication) Kind() Kind { return KindIndication }

func (p *Indication) Transaction() TransactionID { return p.ID }

func (p *ErrorIndication) Kind() Kind { return KindErrorIndication }

func (p *ErrorIndication) Transaction() TransactionID { return p.ID }

// NewPDU returns an empty PDU value for kind, ready to be decoded into.
func NewPDU(kind Kind) (PDU, error) {
	switch kind {
	case KindSubscribeRequest:
		return &SubscriptionRequest{}, nil
	case KindSubscribeResponse:
		return &SubscriptionResponse{}, nil
	case KindSubscribeFailure:
		return &SubscriptionFailure{}, nil
	case KindDeleteRequest:
		return &SubscriptionDeleteRequest{}, nil
	case KindDeleteResponse:
		return &SubscriptionDeleteResponse{}, nil
	case KindDeleteFailure:
		return &SubscriptionDeleteFailure{}, nil
	case KindControlRequest:
		return &ControlRequest{}, nil
	case KindControlAck:
		return &ControlAck{}, nil
	case KindControlFailure:
		return &ControlFailure{}, nil
	case KindIndication:
		return &Indication{}, nil
	case KindErrorIndication:
		return &ErrorIndication{}, nil
	default:
		return nil, ErrUnknownKind
	}
}
