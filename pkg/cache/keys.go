package cache

// TableKeyOpts are the generation options that change a Path Table.
type TableKeyOpts struct {
	AngleTolerance    float64 `json:"angle_tolerance"`
	ConnectDistance   float64 `json:"connect_distance"`
	MaxGroups         int     `json:"max_groups"`
	NoCombine         bool    `json:"no_combine"`
	EndpointConflicts bool    `json:"endpoint_conflicts"`
}

// Keyer derives cache keys.
type Keyer interface {
	// TableKey returns the key of the table generated from geometry with
	// the given hash under opts.
	TableKey(geometryHash string, opts TableKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TableKey implements Keyer.
func (DefaultKeyer) TableKey(geometryHash string, opts TableKeyOpts) string {
	return hashKey("table", geometryHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, so that several layouts or
// tenants can share one backend.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "layout:club:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TableKey implements Keyer.
func (k *ScopedKeyer) TableKey(geometryHash string, opts TableKeyOpts) string {
	return k.prefix + k.inner.TableKey(geometryHash, opts)
}
