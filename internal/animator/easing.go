package animator

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Easing maps local progress in [0,1] onto [0,1].
type Easing func(t float64) float64

// Curves assigns an easing to each animated property.
type Curves struct {
	TitleFade  Easing
	Typewriter Easing
	Bars       Easing
	Labels     Easing
}

// DefaultCurves: ease-out for growth and fades, linear typewriter reveal.
var DefaultCurves = Curves{
	TitleFade:  EaseOutCubic,
	Typewriter: Linear,
	Bars:       EaseOutCubic,
	Labels:     EaseOutQuad,
}

func Linear(t float64) float64 {
	return clamp01(t)
}

// EaseOutCubic decelerates towards the end. Used for bar growth and fades.
func EaseOutCubic(t float64) float64 {
	t = clamp01(t)
	return 1 - pow(1-t, 3)
}

func EaseOutQuad(t float64) float64 {
	t = clamp01(t)
	return 1 - (1-t)*(1-t)
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
