/*
Package checkpoint persists trainer state under milestones
*/
package checkpoint

import (
	"bytes"
	"encoding/gob"
	"strconv"

	"go-ml.dev/pkg/synthtrain/model"
	"golang.org/x/xerrors"
)

// ErrNotFound is reported when no checkpoint exists for a milestone
var ErrNotFound = xerrors.New("checkpoint not found")

/*
Milestone identifies a persisted state, a periodic index or the final marker
*/
type Milestone struct {
	n     int
	final bool
}

// Final is the milestone saved once at the end of training
var Final = Milestone{final: true}

const finalName = "final"

// At is the n-th periodic milestone
func At(n int) Milestone { return Milestone{n: n} }

func (m Milestone) IsFinal() bool { return m.final }
func (m Milestone) Index() int    { return m.n }

func (m Milestone) String() string {
	if m.final {
		return finalName
	}
	return strconv.Itoa(m.n)
}

func ParseMilestone(s string) (Milestone, error) {
	if s == finalName {
		return Final, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Milestone{}, xerrors.Errorf("bad milestone %q: %w", s, model.ErrInvalidConfiguration)
	}
	return At(n), nil
}

/*
State is the trainer state saved as a single unit
*/
type State struct {
	Step      int
	Model     model.Snapshot
	Optimizer model.Snapshot
}

/*
Store saves and restores states by milestone
*/
type Store interface {
	Save(Milestone, State) error
	Load(Milestone) (State, error)
}

func encode(v interface{}) ([]byte, error) {
	bf := bytes.Buffer{}
	if err := gob.NewEncoder(&bf).Encode(v); err != nil {
		return nil, err
	}
	return bf.Bytes(), nil
}

func decode(b []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}

/*
Memory keeps deep copies of states in process memory
*/
type Memory struct {
	states map[Milestone][]byte
	order  []Milestone
}

func NewMemory() *Memory {
	return &Memory{states: map[Milestone][]byte{}}
}

func (m *Memory) Save(ms Milestone, s State) error {
	b, err := encode(s)
	if err != nil {
		return model.Failure(model.ErrIOFailure, err, "encode checkpoint %v", ms)
	}
	if _, ok := m.states[ms]; !ok {
		m.order = append(m.order, ms)
	}
	m.states[ms] = b
	return nil
}

func (m *Memory) Load(ms Milestone) (s State, err error) {
	b, ok := m.states[ms]
	if !ok {
		return s, xerrors.Errorf("milestone %v: %w", ms, ErrNotFound)
	}
	if err = decode(b, &s); err != nil {
		err = model.Failure(model.ErrIOFailure, err, "decode checkpoint %v", ms)
	}
	return
}

// Milestones in order of the first save
func (m *Memory) Milestones() []Milestone {
	return append([]Milestone(nil), m.order...)
}
