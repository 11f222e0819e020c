package transform

// Mapping represents a pipeline of zero or more StepMaps composed together.
// Applying a mapping will apply each of its component maps in turn, so, for
// example, if you have mappings for a whole document change, and then want
// to know how a given position in that document changed, you'll want to
// build up a mapping across all of the individual steps involved.
//
// This class contains, as an optimization, a register of mirrored maps, which
// is used to skip replaying operations that are mirrored in the sequence
// (think: a replace followed by its own inverse). When a position falls
// inside a range removed by one of these mirrored steps, mapInner jumps
// straight to the corresponding position in the mirror's target document via
// the recover token on the MapResult, instead of just collapsing it to the
// edge of the deletion.
type Mapping struct {
	Maps   []*StepMap
	Mirror map[int]int
	From   int
	To     int
}

// NewMapping creates a new mapping with the given position maps.
func NewMapping(maps ...[]*StepMap) *Mapping {
	m := &Mapping{}
	if len(maps) > 0 {
		m.Maps = append(m.Maps, maps[0]...)
	}
	m.To = len(m.Maps)
	return m
}

// Slice creates a mapping that maps only through a part of this one.
func (m *Mapping) Slice(from, to int) *Mapping {
	return &Mapping{Maps: m.Maps, Mirror: m.Mirror, From: from, To: to}
}

// Copy creates a copy of this mapping.
func (m *Mapping) Copy() *Mapping {
	maps := make([]*StepMap, len(m.Maps))
	copy(maps, m.Maps)
	var mirror map[int]int
	if m.Mirror != nil {
		mirror = make(map[int]int, len(m.Mirror))
		for k, v := range m.Mirror {
			mirror[k] = v
		}
	}
	return &Mapping{Maps: maps, Mirror: mirror, From: m.From, To: m.To}
}

// AppendMap adds a step map to the end of this mapping. If mirrors is given,
// it should be the index of the step map that is the mirror image of this
// one.
func (m *Mapping) AppendMap(sm *StepMap, mirrors ...int) {
	m.Maps = append(m.Maps, sm)
	m.To = len(m.Maps)
	if len(mirrors) > 0 {
		m.setMirror(len(m.Maps)-1, mirrors[0])
	}
}

// AppendMapping appends the maps in the given mapping to this one (preserving
// information about mirrored maps).
func (m *Mapping) AppendMapping(other *Mapping) {
	startSize := len(m.Maps)
	for i := 0; i < len(other.Maps); i++ {
		mirr, ok := other.getMirror(i)
		if ok && mirr < i {
			m.AppendMap(other.Maps[i], startSize+mirr)
		} else {
			m.AppendMap(other.Maps[i])
		}
	}
}

func (m *Mapping) getMirror(n int) (int, bool) {
	if m.Mirror == nil {
		return 0, false
	}
	v, ok := m.Mirror[n]
	return v, ok
}

func (m *Mapping) setMirror(n, mirror int) {
	if m.Mirror == nil {
		m.Mirror = map[int]int{}
	}
	m.Mirror[n] = mirror
	m.Mirror[mirror] = n
}

// AppendMappingInverted appends the inverse of the given mapping to this one.
func (m *Mapping) AppendMappingInverted(other *Mapping) {
	totalSize := len(m.Maps) + len(other.Maps)
	for i := len(other.Maps) - 1; i >= 0; i-- {
		mirr, ok := other.getMirror(i)
		if ok && mirr > i {
			m.AppendMap(other.Maps[i].Invert(), totalSize-mirr-1)
		} else {
			m.AppendMap(other.Maps[i].Invert())
		}
	}
}

// Invert creates a mapping that maps the positions in the final document of
// this mapping to the positions in the original document.
func (m *Mapping) Invert() *Mapping {
	inverse := NewMapping()
	inverse.AppendMappingInverted(m)
	return inverse
}

// Map maps the given position through this mapping.
func (m *Mapping) Map(pos int, assoc ...int) int {
	a := 1
	if len(assoc) > 0 {
		a = assoc[0]
	}
	if m.Mirror != nil {
		return m.mapInner(pos, a, false).Pos
	}
	for i := m.From; i < m.To; i++ {
		pos = m.Maps[i].Map(pos, a)
	}
	return pos
}

// MapResult maps the given position through this mapping, returning extra
// information about the mapping, in particular whether the position was
// deleted.
func (m *Mapping) MapResult(pos int, assoc ...int) *MapResult {
	a := 1
	if len(assoc) > 0 {
		a = assoc[0]
	}
	return m.mapInner(pos, a, true)
}

func (m *Mapping) mapInner(pos, assoc int, wantResult bool) *MapResult {
	deleted := false
	for i := m.From; i < m.To; {
		result := m.Maps[i].MapResult(pos, assoc)
		if result.Recover != nil {
			if corr, ok := m.getMirror(i); ok && corr > i && corr < m.To {
				i = corr
				pos = m.Maps[corr].Recover(*result.Recover)
				i++
				continue
			}
		}
		if result.Deleted {
			deleted = true
		}
		pos = result.Pos
		i++
	}
	_ = wantResult
	return NewMapResult(pos, deleted)
}

var _ Mappable = &Mapping{}
