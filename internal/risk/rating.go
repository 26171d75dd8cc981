package risk

// ColorClass is a palette key for presenting a rating.
type ColorClass string

const (
	ColorExcellent ColorClass = "excellent"
	ColorGood      ColorClass = "good"
	ColorFair      ColorClass = "fair"
	ColorModerate  ColorClass = "moderate"
	ColorHigh      ColorClass = "high"
	ColorVeryHigh  ColorClass = "veryHigh"
	ColorCritical  ColorClass = "critical"
)

var palette = map[ColorClass]string{
	ColorExcellent: "#4CAF50",
	ColorGood:      "#8BC34A",
	ColorFair:      "#FFC107",
	ColorModerate:  "#FF9800",
	ColorHigh:      "#FF5722",
	ColorVeryHigh:  "#E64A19",
	ColorCritical:  "#D32F2F",
}

// Hex returns the display colour, or "" for an unknown class.
func (c ColorClass) Hex() string {
	return palette[c]
}

// ColorClasses lists the palette from safest to most severe.
func ColorClasses() []ColorClass {
	return []ColorClass{ColorExcellent, ColorGood, ColorFair, ColorModerate, ColorHigh, ColorVeryHigh, ColorCritical}
}

// Rating is one axis result.
type Rating struct {
	Score      int        `json:"score"`
	Label      string     `json:"rating"`
	ColorClass ColorClass `json:"color_class"`
}

// Color returns the hex colour for the rating.
func (r Rating) Color() string {
	return r.ColorClass.Hex()
}

func rate(score int, label string, class ColorClass) Rating {
	return Rating{Score: score, Label: label, ColorClass: class}
}

// Axis names a decay mechanism.
type Axis string

const (
	AxisNaturalAging    Axis = "naturalAging"
	AxisMechanicalDecay Axis = "mechanicalDecay"
	AxisMoldGrowth      Axis = "moldGrowth"
	AxisMetalCorrosion  Axis = "metalCorrosion"
)

// Assessment holds the four axis ratings.
type Assessment struct {
	NaturalAging    Rating `json:"natural_aging"`
	MechanicalDecay Rating `json:"mechanical_decay"`
	MoldGrowth      Rating `json:"mold_growth"`
	MetalCorrosion  Rating `json:"metal_corrosion"`
}

// ByAxis returns the ratings keyed by axis.
func (a Assessment) ByAxis() map[Axis]Rating {
	return map[Axis]Rating{
		AxisNaturalAging:    a.NaturalAging,
		AxisMechanicalDecay: a.MechanicalDecay,
		AxisMoldGrowth:      a.MoldGrowth,
		AxisMetalCorrosion:  a.MetalCorrosion,
	}
}

// Overall returns the axis with the lowest score. Ties resolve in the order
// natural aging, mechanical decay, mold growth, metal corrosion.
func (a Assessment) Overall() (Axis, Rating) {
	axis, worst := AxisNaturalAging, a.NaturalAging
	for _, c := range []struct {
		axis Axis
		r    Rating
	}{
		{AxisMechanicalDecay, a.MechanicalDecay},
		{AxisMoldGrowth, a.MoldGrowth},
		{AxisMetalCorrosion, a.MetalCorrosion},
	} {
		if c.r.Score < worst.Score {
			axis, worst = c.axis, c.r
		}
	}
	return axis, worst
}
