package mood

import "github.com/osa030/moodbox/internal/domain/track"

// Targets are the audio attributes a mood aims for.
// Valence, Energy and Danceability are in 0..1; Tempo is BPM, 0 meaning unset.
type Targets struct {
	Valence      float64
	Energy       float64
	Danceability float64
	Tempo        float64
}

// Field names a target attribute.
type Field int

const (
	FieldValence Field = iota
	FieldEnergy
	FieldDanceability
	FieldTempo
)

// Range bounds a target attribute.
type Range struct {
	Min float64
	Max float64
}

// Clamp returns v bounded by r.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Overrides are partial target bounds extracted from free text.
// A nil field leaves the base target untouched.
type Overrides struct {
	Valence      *Range
	Energy       *Range
	Danceability *Range
	Tempo        *Range
}

// Clone returns a deep copy.
func (o Overrides) Clone() Overrides {
	cp := func(r *Range) *Range {
		if r == nil {
			return nil
		}
		v := *r
		return &v
	}
	return Overrides{
		Valence:      cp(o.Valence),
		Energy:       cp(o.Energy),
		Danceability: cp(o.Danceability),
		Tempo:        cp(o.Tempo),
	}
}

// Empty reports whether no field is bounded.
func (o Overrides) Empty() bool {
	return o.Valence == nil && o.Energy == nil && o.Danceability == nil && o.Tempo == nil
}

func (o *Overrides) slot(f Field) **Range {
	switch f {
	case FieldValence:
		return &o.Valence
	case FieldEnergy:
		return &o.Energy
	case FieldDanceability:
		return &o.Danceability
	default:
		return &o.Tempo
	}
}

// Tighten returns a copy with field f narrowed to [lo, hi].
// Bounds compose: the larger min and the smaller max win. If the result
// would be empty, the newer bound replaces the old one.
func (o Overrides) Tighten(f Field, lo, hi float64) Overrides {
	out := o.Clone()
	s := out.slot(f)
	next := Range{Min: lo, Max: hi}
	if *s != nil {
		cur := **s
		merged := Range{Min: max(cur.Min, lo), Max: min(cur.Max, hi)}
		if merged.Min <= merged.Max {
			next = merged
		}
	}
	*s = &next
	return out
}

// Get returns the range for f, or nil.
func (o Overrides) Get(f Field) *Range {
	return *o.slot(f)
}

// Resolve returns fully populated targets for m, clamped into the overrides.
func Resolve(m Mood, o Overrides) Targets {
	base, ok := profiles[m]
	if !ok {
		base = profiles[Chill]
	}
	t := base.targets
	if o.Valence != nil {
		t.Valence = o.Valence.Clamp(t.Valence)
	}
	if o.Energy != nil {
		t.Energy = o.Energy.Clamp(t.Energy)
	}
	if o.Danceability != nil {
		t.Danceability = o.Danceability.Clamp(t.Danceability)
	}
	if o.Tempo != nil && t.Tempo > 0 {
		t.Tempo = o.Tempo.Clamp(t.Tempo)
	}
	return t
}

// EnergyBucket is a coarse energy level.
type EnergyBucket string

const (
	EnergyLow  EnergyBucket = "low"
	EnergyMid  EnergyBucket = "mid"
	EnergyHigh EnergyBucket = "high"
)

// Bucket classifies an energy target.
func Bucket(energy float64) EnergyBucket {
	switch {
	case energy < 0.4:
		return EnergyLow
	case energy < 0.7:
		return EnergyMid
	default:
		return EnergyHigh
	}
}

// Gate is the hard mood predicate over known features.
// Any feature the rule needs that is unknown fails the gate.
func Gate(m Mood, f track.AudioFeatures) bool {
	v, e, d, t := f.Valence, f.Energy, f.Danceability, f.Tempo
	switch m {
	case Happy:
		return v != nil && e != nil && t != nil && *v >= 0.6 && *e >= 0.5 && *t >= 100
	case Sad:
		return v != nil && e != nil && *v <= 0.4 && *e <= 0.6
	case Chill:
		return e != nil && t != nil && *e <= 0.55 && *t <= 115
	case Energetic:
		return e != nil && t != nil && *e >= 0.7 && *t >= 115
	case Romantic:
		return v != nil && e != nil && t != nil && *v >= 0.35 && *e <= 0.7 && *t <= 125
	case Focus:
		return e != nil && d != nil && *e <= 0.6 && *d <= 0.65
	default:
		return false
	}
}
