// Package decoder turns raw instruction data back into named parameter
// records. Decoders are grouped by the program they belong to, and within a
// program each one claims the payloads whose leading byte matches its tag.
//
//	registry := decoder.NewRegistry()
//	amm.RegisterDecoders(registry, programID)
//	ix, err := registry.Decode(data, &programID)
package decoder

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/lugondev/go-amm/pkg/view"
)

// Instruction is a decoded instruction payload.
type Instruction struct {
	Name      string
	Tag       uint8
	Data      any
	RawData   []byte
	ProgramID solana.PublicKey
}

// Decoder decodes the payloads of one instruction kind.
type Decoder interface {
	Decode(data []byte) (*Instruction, error)
	// CanDecode is a cheap check on the discriminator only; Decode may still
	// reject a truncated payload.
	CanDecode(data []byte) bool
	GetName() string
	GetProgramID() solana.PublicKey
}

// TagDecoder handles one instruction tag of a program.
type TagDecoder struct {
	name      string
	programID solana.PublicKey
	tag       uint8
	decodeFn  func(v *view.PayloadView) (any, error)
}

var _ Decoder = (*TagDecoder)(nil)

// NewTagDecoder creates a decoder for instructions whose first byte equals
// tag. decodeFn reads the parameters that follow the tag.
func NewTagDecoder(name string, programID solana.PublicKey, tag uint8, decodeFn func(v *view.PayloadView) (any, error)) *TagDecoder {
	return &TagDecoder{name: name, programID: programID, tag: tag, decodeFn: decodeFn}
}

func (d *TagDecoder) Decode(data []byte) (*Instruction, error) {
	v, err := view.NewPayloadView(data)
	if err != nil {
		return nil, err
	}
	if got := v.Tag(); got != d.tag {
		return nil, fmt.Errorf("tag mismatch: expected %d, got %d", d.tag, got)
	}
	params, err := d.decodeFn(v)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", d.name, err)
	}
	return &Instruction{
		Name:      d.name,
		Tag:       d.tag,
		Data:      params,
		RawData:   data,
		ProgramID: d.programID,
	}, nil
}

func (d *TagDecoder) CanDecode(data []byte) bool {
	return len(data) > 0 && data[0] == d.tag
}

func (d *TagDecoder) GetName() string                { return d.name }
func (d *TagDecoder) GetProgramID() solana.PublicKey { return d.programID }

// Registry routes payloads to the decoders of the program that owns them.
type Registry struct {
	mu       sync.RWMutex
	programs map[solana.PublicKey][]Decoder
}

func NewRegistry() *Registry {
	return &Registry{programs: map[solana.PublicKey][]Decoder{}}
}

// RegisterForProgram appends d to the decoders tried for programID. The first
// registered decoder whose CanDecode accepts a payload wins.
func (r *Registry) RegisterForProgram(programID solana.PublicKey, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[programID] = append(r.programs[programID], d)
}

// HasProgram reports whether any decoder is registered for programID.
func (r *Registry) HasProgram(programID solana.PublicKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.programs[programID]) > 0
}

// Programs lists the programs with registered decoders in base58 order.
func (r *Registry) Programs() []solana.PublicKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedPrograms()
}

// Names lists the instruction names registered for programID in
// registration order.
func (r *Registry) Names(programID solana.PublicKey) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.programs[programID]))
	for _, d := range r.programs[programID] {
		names = append(names, d.GetName())
	}
	return names
}

// Decode decodes data with the decoders registered for programID. A nil or
// zero programID tries every program in base58 order.
func (r *Registry) Decode(data []byte, programID *solana.PublicKey) (*Instruction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if programID != nil && !programID.IsZero() {
		if d := match(r.programs[*programID], data); d != nil {
			return d.Decode(data)
		}
		return nil, fmt.Errorf("no decoder for program %s (length: %d)", programID, len(data))
	}
	for _, p := range r.sortedPrograms() {
		if d := match(r.programs[p], data); d != nil {
			return d.Decode(data)
		}
	}
	return nil, fmt.Errorf("no decoder found for data (length: %d)", len(data))
}

func match(decoders []Decoder, data []byte) Decoder {
	for _, d := range decoders {
		if d.CanDecode(data) {
			return d
		}
	}
	return nil
}

func (r *Registry) sortedPrograms() []solana.PublicKey {
	keys := make([]solana.PublicKey, 0, len(r.programs))
	for k := range r.programs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b solana.PublicKey) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}
