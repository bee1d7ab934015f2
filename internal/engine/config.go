package engine

// PhysicsConfig carries the tuning constants of the per-tick physics and
// bonding step. The bond probability curve and reshape interpolation are
// empirically tuned values, kept configurable rather than hard-coded.
type PhysicsConfig struct {
	// Spatial grid cell size, tuned to the typical interaction radius.
	CellSize float64

	// Pairwise force ranges.
	InteractionRadius  float64 // short-range repulsion query radius
	AttractionRadius   float64 // open-valence attraction radius
	RepulsionStrength  float64
	AttractionStrength float64

	// World boundary handling.
	BoundaryMargin   float64
	BoundaryStrength float64

	// Probabilistic bonding: p = (1 - d/BondingRadius) * BondChanceScale.
	BondingRadius   float64
	BondChanceScale float64

	// Hookean bond springs; rest length is the sum of the atom radii.
	SpringStiffness float64

	// Integration.
	Damping  float64
	MaxSpeed float64

	// Thermal jitter sampled from a smooth noise field.
	JitterStrength float64
	JitterScale    float64

	// Reshaping: fixed duration in ticks, with a blend factor that
	// accelerates from ReshapeBlendMin to ReshapeBlendMax over the run.
	ReshapeTicks    int
	ReshapeBlendMin float64
	ReshapeBlendMax float64

	// Decay: base countdown in ticks, scaled up by valence closeness.
	DecayBaseTicks      float64
	DecayClosenessBonus float64
	ReleaseSpeed        float64
	SuppressionTicks    int

	// Intentions.
	IntentionStrength float64
	CaptureRadiusFrac float64

	// Polymer chaining distance between sealed polymer centroids.
	ChainRadius float64
}

// Config is the immutable construction-time configuration of a world. Zero
// fields are filled with defaults, so tests can override a single knob.
type Config struct {
	Width  float64
	Height float64

	// Seed for the world's random source; 0 derives one from the clock.
	// Tests inject a fixed seed for reproducible bonding draws.
	Seed int64

	Elements  *ElementTable
	Templates *TemplateLibrary
	Physics   PhysicsConfig

	Logger Logger
}

// DefaultPhysics returns the tuned default physics constants.
func DefaultPhysics() PhysicsConfig {
	return PhysicsConfig{
		CellSize:            100,
		InteractionRadius:   100,
		AttractionRadius:    90,
		RepulsionStrength:   220,
		AttractionStrength:  18,
		BoundaryMargin:      60,
		BoundaryStrength:    140,
		BondingRadius:       40,
		BondChanceScale:     0.3,
		SpringStiffness:     9,
		Damping:             0.92,
		MaxSpeed:            240,
		JitterStrength:      10,
		JitterScale:         0.004,
		ReshapeTicks:        60,
		ReshapeBlendMin:     0.02,
		ReshapeBlendMax:     0.35,
		DecayBaseTicks:      300,
		DecayClosenessBonus: 2.0,
		ReleaseSpeed:        80,
		SuppressionTicks:    90,
		IntentionStrength:   60,
		CaptureRadiusFrac:   0.55,
		ChainRadius:         160,
	}
}

// DefaultConfig returns a complete default configuration with the built-in
// element table and template library.
func DefaultConfig() Config {
	return Config{
		Width:     2000,
		Height:    1200,
		Elements:  NewElementTable(DefaultElements()...),
		Templates: NewTemplateLibrary(DefaultTemplates()...),
		Physics:   DefaultPhysics(),
		Logger:    NewNoOpLogger(),
	}
}

// withDefaults fills any zero-valued field from the defaults so partially
// specified configs (common in tests) behave.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	defPhys := DefaultPhysics()
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.Elements == nil {
		c.Elements = def.Elements
	}
	if c.Templates == nil {
		c.Templates = def.Templates
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	p := &c.Physics
	if p.CellSize <= 0 {
		p.CellSize = defPhys.CellSize
	}
	if p.InteractionRadius <= 0 {
		p.InteractionRadius = defPhys.InteractionRadius
	}
	if p.AttractionRadius <= 0 {
		p.AttractionRadius = defPhys.AttractionRadius
	}
	if p.RepulsionStrength <= 0 {
		p.RepulsionStrength = defPhys.RepulsionStrength
	}
	if p.AttractionStrength <= 0 {
		p.AttractionStrength = defPhys.AttractionStrength
	}
	if p.BoundaryMargin <= 0 {
		p.BoundaryMargin = defPhys.BoundaryMargin
	}
	if p.BoundaryStrength <= 0 {
		p.BoundaryStrength = defPhys.BoundaryStrength
	}
	if p.BondingRadius <= 0 {
		p.BondingRadius = defPhys.BondingRadius
	}
	if p.BondChanceScale <= 0 {
		p.BondChanceScale = defPhys.BondChanceScale
	}
	if p.SpringStiffness <= 0 {
		p.SpringStiffness = defPhys.SpringStiffness
	}
	if p.Damping <= 0 {
		p.Damping = defPhys.Damping
	}
	if p.MaxSpeed <= 0 {
		p.MaxSpeed = defPhys.MaxSpeed
	}
	if p.JitterStrength < 0 {
		p.JitterStrength = defPhys.JitterStrength
	}
	if p.JitterScale <= 0 {
		p.JitterScale = defPhys.JitterScale
	}
	if p.ReshapeTicks <= 0 {
		p.ReshapeTicks = defPhys.ReshapeTicks
	}
	if p.ReshapeBlendMin <= 0 {
		p.ReshapeBlendMin = defPhys.ReshapeBlendMin
	}
	if p.ReshapeBlendMax <= 0 {
		p.ReshapeBlendMax = defPhys.ReshapeBlendMax
	}
	if p.DecayBaseTicks <= 0 {
		p.DecayBaseTicks = defPhys.DecayBaseTicks
	}
	if p.DecayClosenessBonus <= 0 {
		p.DecayClosenessBonus = defPhys.DecayClosenessBonus
	}
	if p.ReleaseSpeed <= 0 {
		p.ReleaseSpeed = defPhys.ReleaseSpeed
	}
	if p.SuppressionTicks <= 0 {
		p.SuppressionTicks = defPhys.SuppressionTicks
	}
	if p.IntentionStrength <= 0 {
		p.IntentionStrength = defPhys.IntentionStrength
	}
	if p.CaptureRadiusFrac <= 0 {
		p.CaptureRadiusFrac = defPhys.CaptureRadiusFrac
	}
	if p.ChainRadius <= 0 {
		p.ChainRadius = defPhys.ChainRadius
	}
	return c
}
