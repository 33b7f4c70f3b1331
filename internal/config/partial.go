package config

// Partial is a sparse overlay on Config. Nil sections and nil fields keep
// the base value; set fields replace it.
type Partial struct {
	Breakpoints *BreakpointPartial `toml:"breakpoints,omitempty" json:"breakpoints,omitempty"`
	Animation   *AnimationPartial  `toml:"animation,omitempty" json:"animation,omitempty"`
	Toasts      *ToastsPartial     `toml:"toasts,omitempty" json:"toasts,omitempty"`
	Container   *ContainerPartial  `toml:"container,omitempty" json:"container,omitempty"`
	Icons       *IconPartial       `toml:"icons,omitempty" json:"icons,omitempty"`
	Intake      *IntakePartial     `toml:"intake,omitempty" json:"intake,omitempty"`
}

type BreakpointPartial struct {
	Mobile *int `toml:"mobile,omitempty" json:"mobile,omitempty"`
}

type AnimationPartial struct {
	Duration *Duration `toml:"duration,omitempty" json:"duration,omitempty"`
}

type ToastsPartial struct {
	DefaultDuration *Duration `toml:"default_duration,omitempty" json:"default_duration,omitempty"`
	Gap             *int      `toml:"gap,omitempty" json:"gap,omitempty"`
}

type ContainerPartial struct {
	Top   *int `toml:"top,omitempty" json:"top,omitempty"`
	Right *int `toml:"right,omitempty" json:"right,omitempty"`
}

type IconPartial struct {
	None    *string `toml:"none,omitempty" json:"none,omitempty"`
	Loading *string `toml:"loading,omitempty" json:"loading,omitempty"`
	Success *string `toml:"success,omitempty" json:"success,omitempty"`
	Error   *string `toml:"error,omitempty" json:"error,omitempty"`
}

type IntakePartial struct {
	Rate  *float64 `toml:"rate,omitempty" json:"rate,omitempty"`
	Burst *int     `toml:"burst,omitempty" json:"burst,omitempty"`
}

// Apply returns base with every field set in p replaced.
func (p Partial) Apply(base Config) Config {
	out := base

	if b := p.Breakpoints; b != nil {
		set(&out.Breakpoints.Mobile, b.Mobile)
	}
	if a := p.Animation; a != nil {
		set(&out.Animation.Duration, a.Duration)
	}
	if t := p.Toasts; t != nil {
		set(&out.Toasts.DefaultDuration, t.DefaultDuration)
		set(&out.Toasts.Gap, t.Gap)
	}
	if c := p.Container; c != nil {
		set(&out.Container.Top, c.Top)
		set(&out.Container.Right, c.Right)
	}
	if i := p.Icons; i != nil {
		set(&out.Icons.None, i.None)
		set(&out.Icons.Loading, i.Loading)
		set(&out.Icons.Success, i.Success)
		set(&out.Icons.Error, i.Error)
	}
	if in := p.Intake; in != nil {
		set(&out.Intake.Rate, in.Rate)
		set(&out.Intake.Burst, in.Burst)
	}

	return out
}

// IsZero reports whether p overrides nothing.
func (p Partial) IsZero() bool {
	return p.Breakpoints == nil && p.Animation == nil && p.Toasts == nil &&
		p.Container == nil && p.Icons == nil && p.Intake == nil
}

// Merge returns p with every field set in other replacing p's value.
func (p Partial) Merge(other Partial) Partial {
	out := p
	if other.Breakpoints != nil {
		b := deref(out.Breakpoints)
		setPtr(&b.Mobile, other.Breakpoints.Mobile)
		out.Breakpoints = &b
	}
	if other.Animation != nil {
		a := deref(out.Animation)
		setPtr(&a.Duration, other.Animation.Duration)
		out.Animation = &a
	}
	if other.Toasts != nil {
		t := deref(out.Toasts)
		setPtr(&t.DefaultDuration, other.Toasts.DefaultDuration)
		setPtr(&t.Gap, other.Toasts.Gap)
		out.Toasts = &t
	}
	if other.Container != nil {
		c := deref(out.Container)
		setPtr(&c.Top, other.Container.Top)
		setPtr(&c.Right, other.Container.Right)
		out.Container = &c
	}
	if other.Icons != nil {
		i := deref(out.Icons)
		setPtr(&i.None, other.Icons.None)
		setPtr(&i.Loading, other.Icons.Loading)
		setPtr(&i.Success, other.Icons.Success)
		setPtr(&i.Error, other.Icons.Error)
		out.Icons = &i
	}
	if other.Intake != nil {
		in := deref(out.Intake)
		setPtr(&in.Rate, other.Intake.Rate)
		setPtr(&in.Burst, other.Intake.Burst)
		out.Intake = &in
	}
	return out
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setPtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Ptr returns a pointer to v. Handy for building partials in code.
func Ptr[T any](v T) *T {
	return &v
}
