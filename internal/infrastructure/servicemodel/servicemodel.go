// Package servicemodel implements the E2 service models the controller
// speaks, serialized with MessagePack.
package servicemodel

import (
	"fmt"
	"time"

	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/e2sm"
)

// RAN function ids the models are registered under.
const (
	FunctionKPM      e2ap.FunctionID = 0
	FunctionNexRAN   e2ap.FunctionID = 1
	FunctionZylinium e2ap.FunctionID = 2
)

// Serializer is the byte codec the models encode their bodies with.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// NewRegistry returns a registry holding every model.
func NewRegistry(s Serializer, now func() time.Time) (*e2sm.Registry, error) {
	return e2sm.NewRegistry(NewKPM(s, now), NewNexRAN(s), NewZylinium(s))
}

func wrongModel(model string, v any) error {
	return fmt.Errorf("%w: %s cannot handle %T", e2sm.ErrWrongModel, model, v)
}
