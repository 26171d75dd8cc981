package materials

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var embeddedProfiles []byte

// ErrInvalidProfile is wrapped by every table validation failure.
var ErrInvalidProfile = errors.New("invalid material profile")

// Table is an immutable set of profiles keyed by material type.
type Table struct {
	byKey    map[string]*Profile
	keys     []string
	fallback *Profile
}

type tableFile struct {
	Profiles []Profile `yaml:"profiles"`
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := LoadTable(bytes.NewReader(embeddedProfiles))
	if err != nil {
		panic(fmt.Sprintf("materials: embedded profiles: %v", err))
	}
	return t
})

// Default returns the built-in table. It is parsed on first use and shared
// afterwards.
func Default() *Table {
	return defaultTable()
}

// LoadFile reads a profile table from a YAML file with the same layout as the
// built-in one.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// LoadTable decodes and validates a YAML profile table. Unknown fields are
// rejected.
func LoadTable(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file tableFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return NewTable(file.Profiles)
}

// NewTable validates profiles and indexes them by key, in slice order.
func NewTable(profiles []Profile) (*Table, error) {
	t := &Table{
		byKey: make(map[string]*Profile, len(profiles)),
		keys:  make([]string, 0, len(profiles)),
	}
	for i := range profiles {
		p := profiles[i]
		if err := validate(&p); err != nil {
			return nil, err
		}
		if _, dup := t.byKey[p.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidProfile, p.Key)
		}
		t.byKey[p.Key] = &p
		t.keys = append(t.keys, p.Key)
	}

	general, ok := t.byKey[GeneralKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q profile is required", ErrInvalidProfile, GeneralKey)
	}
	t.fallback = general
	return t, nil
}

func validate(p *Profile) error {
	if p.Key == "" {
		return fmt.Errorf("%w: missing key", ErrInvalidProfile)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: %s: missing name", ErrInvalidProfile, p.Key)
	}
	if p.OptimalTemp.Min > p.OptimalTemp.Max {
		return fmt.Errorf("%w: %s: optimalTemp min above max", ErrInvalidProfile, p.Key)
	}
	if p.OptimalRH.Min > p.OptimalRH.Max || p.OptimalRH.Min < 0 || p.OptimalRH.Max > 100 {
		return fmt.Errorf("%w: %s: optimalRH must be an ordered range within 0-100", ErrInvalidProfile, p.Key)
	}
	for axis, pr := range map[string]Priority{
		"naturalAging":    p.Priorities.NaturalAging,
		"mechanicalDecay": p.Priorities.MechanicalDecay,
		"moldGrowth":      p.Priorities.MoldGrowth,
		"metalCorrosion":  p.Priorities.MetalCorrosion,
	} {
		if !pr.Valid() {
			return fmt.Errorf("%w: %s: unknown %s priority %q", ErrInvalidProfile, p.Key, axis, pr)
		}
	}
	if p.CriticalRHLow != nil && p.CriticalRHHigh != nil && *p.CriticalRHLow >= *p.CriticalRHHigh {
		return fmt.Errorf("%w: %s: criticalRHLow must be below criticalRHHigh", ErrInvalidProfile, p.Key)
	}
	if p.PermanentStorageTemp != nil && p.PermanentStorageTemp.Min > p.PermanentStorageTemp.Max {
		return fmt.Errorf("%w: %s: permanentStorageTemp min above max", ErrInvalidProfile, p.Key)
	}
	return nil
}

// Lookup returns the profile for key, or the general profile when the key is
// unknown. It never returns nil.
func (t *Table) Lookup(key string) *Profile {
	if p, ok := t.byKey[key]; ok {
		return p
	}
	return t.fallback
}

// Get returns the profile for key and whether it exists.
func (t *Table) Get(key string) (*Profile, bool) {
	p, ok := t.byKey[key]
	return p, ok
}

// Keys returns the material keys in table order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Profiles returns every profile in table order.
func (t *Table) Profiles() []*Profile {
	out := make([]*Profile, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.byKey[k])
	}
	return out
}
