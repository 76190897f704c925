package slice

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultSliceName is the slice that exists from start-up.
const DefaultSliceName = "default"

var (
	ErrInvalidName     = errors.New("name must be non-empty and contain no '/'")
	ErrInvalidNodeB    = errors.New("invalid nodeb")
	ErrInvalidIMSI     = errors.New("imsi must be 1 to 15 digits")
	ErrUnknownNodeType = errors.New("unknown nodeb type")
)

// Slice groups UEs under one allocation policy.
type Slice struct {
	Name   string
	Policy *Policy
	ues    map[string]struct{}
}

func NewSlice(name string, policy *Policy) (*Slice, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, ErrInvalidName
	}
	return &Slice{Name: name, Policy: policy, ues: make(map[string]struct{})}, nil
}

func (s *Slice) BindUE(imsi string) bool {
	if _, ok := s.ues[imsi]; ok {
		return false
	}
	s.ues[imsi] = struct{}{}
	return true
}

func (s *Slice) UnbindUE(imsi string) bool {
	if _, ok := s.ues[imsi]; !ok {
		return false
	}
	delete(s.ues, imsi)
	return true
}

func (s *Slice) HasUE(imsi string) bool {
	_, ok := s.ues[imsi]
	return ok
}

func (s *Slice) UEs() []string {
	return sortedKeys(s.ues)
}

// View is the display form of a slice.
type View struct {
	Name             string     `json:"name"`
	AllocationPolicy PolicyView `json:"allocation_policy"`
	UEs              []string   `json:"ues"`
	NodeBs           []string   `json:"nodebs"`
}

func (s *Slice) View(nodebs []string) View {
	if nodebs == nil {
		nodebs = []string{}
	}
	return View{Name: s.Name, AllocationPolicy: s.Policy.View(), UEs: s.UEs(), NodeBs: nodebs}
}

// NodeBType is the kind of RAN node.
type NodeBType string

const (
	TypeGNB     NodeBType = "gNB"
	TypeGNBCUUP NodeBType = "gNB-CU-UP"
	TypeGNBDU   NodeBType = "gNB-DU"
	TypeENGNB   NodeBType = "en-gNB"
	TypeENB     NodeBType = "eNB"
	TypeNGENB   NodeBType = "ng-eNB"
)

func (t NodeBType) Valid() bool {
	switch t {
	case TypeGNB, TypeGNBCUUP, TypeGNBDU, TypeENGNB, TypeENB, TypeNGENB:
		return true
	}
	return false
}

// DefaultIDLen is the node id length used when none is given.
const DefaultIDLen = 20

// NodeB is a RAN node the controller manages.
type NodeB struct {
	Name      string
	Type      NodeBType
	MCC       string
	MNC       string
	ID        int64
	IDLen     int
	Connected bool
	TotalPRBs int64
	LastSeen  time.Time
	slices    map[string]struct{}
}

func NewNodeB(typ NodeBType, mcc, mnc string, id int64, idLen int) (*NodeB, error) {
	if idLen == 0 {
		idLen = DefaultIDLen
	}
	name, err := BuildName(typ, mcc, mnc, id, idLen)
	if err != nil {
		return nil, err
	}
	return &NodeB{
		Name:   name,
		Type:   typ,
		MCC:    mcc,
		MNC:    mnc,
		ID:     id,
		IDLen:  idLen,
		slices: make(map[string]struct{}),
	}, nil
}

// BuildName returns the canonical endpoint name, e.g. gnB_001_001_00000a.
func BuildName(typ NodeBType, mcc, mnc string, id int64, idLen int) (string, error) {
	if !typ.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownNodeType, typ)
	}
	if len(mcc) != 3 || !isDigits(mcc) {
		return "", fmt.Errorf("%w: mcc must be 3 digits", ErrInvalidNodeB)
	}
	if len(mnc) < 1 || len(mnc) > 3 || !isDigits(mnc) {
		return "", fmt.Errorf("%w: mnc must be 1 to 3 digits", ErrInvalidNodeB)
	}
	if id < 0 {
		return "", fmt.Errorf("%w: id must not be negative", ErrInvalidNodeB)
	}
	prefix, err := namePrefix(typ, idLen)
	if err != nil {
		return "", err
	}
	mnc = strings.Repeat("0", 3-len(mnc)) + mnc
	return fmt.Sprintf("%s_%s_%s_%06x", prefix, mcc, mnc, id), nil
}

func namePrefix(typ NodeBType, idLen int) (string, error) {
	switch typ {
	case TypeGNB, TypeGNBCUUP, TypeGNBDU:
		return "gnB", nil
	case TypeENGNB:
		return "en_gnB", nil
	case TypeENB, TypeNGENB:
		base := "enB"
		if typ == TypeNGENB {
			base = "ng_enB"
		}
		switch idLen {
		case 0, 20:
			return base + "_macro", nil
		case 18:
			return base + "_shortmacro", nil
		case 21:
			return base + "_longmacro", nil
		}
		return "", fmt.Errorf("%w: id_len %d not valid for %s", ErrInvalidNodeB, idLen, typ)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNodeType, typ)
}

func (n *NodeB) BindSlice(name string) bool {
	if _, ok := n.slices[name]; ok {
		return false
	}
	n.slices[name] = struct{}{}
	return true
}

func (n *NodeB) UnbindSlice(name string) bool {
	if _, ok := n.slices[name]; !ok {
		return false
	}
	delete(n.slices, name)
	return true
}

func (n *NodeB) HasSlice(name string) bool {
	_, ok := n.slices[name]
	return ok
}

func (n *NodeB) Slices() []string {
	return sortedKeys(n.slices)
}

type NodeBView struct {
	Name   string    `json:"name"`
	Type   NodeBType `json:"type"`
	MCC    string    `json:"mcc"`
	MNC    string    `json:"mnc"`
	ID     int64     `json:"id"`
	IDLen  int       `json:"id_len"`
	Status struct {
		Connected bool       `json:"connected"`
		LastSeen  *time.Time `json:"last_seen,omitempty"`
	} `json:"status"`
	Config struct {
		TotalPRBs int64 `json:"total_prbs"`
	} `json:"config"`
	Slices []string `json:"slices"`
}

func (n *NodeB) View() NodeBView {
	v := NodeBView{Name: n.Name, Type: n.Type, MCC: n.MCC, MNC: n.MNC, ID: n.ID, IDLen: n.IDLen, Slices: n.Slices()}
	v.Status.Connected = n.Connected
	if !n.LastSeen.IsZero() {
		seen := n.LastSeen
		v.Status.LastSeen = &seen
	}
	v.Config.TotalPRBs = n.TotalPRBs
	return v
}

// UE is a served device.
type UE struct {
	IMSI      string `json:"imsi"`
	TMSI      string `json:"tmsi"`
	CRNTI     string `json:"crnti"`
	Connected bool   `json:"connected"`
}

func NewUE(imsi, tmsi string) (*UE, error) {
	if len(imsi) == 0 || len(imsi) > 15 || !isDigits(imsi) {
		return nil, ErrInvalidIMSI
	}
	return &UE{IMSI: imsi, TMSI: tmsi}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
