package dom

import (
	"math"
	"strconv"
	"strings"
)

// AttributeEffect classifies what an attribute change invalidates.
type AttributeEffect uint8

const (
	// EffectPaint only changes how already laid out nodes are painted.
	EffectPaint AttributeEffect = iota
	// EffectLayout changes sizing, position or the accessibility tree.
	EffectLayout
)

// Attribute names.
const (
	AttrWidth      = "width"
	AttrHeight     = "height"
	AttrDirection  = "direction"
	AttrPadding    = "padding"
	AttrBackground = "background"
	AttrColor      = "color"
	AttrOpacity    = "opacity"
	AttrRotate     = "rotate"
	AttrScale      = "scale"
	AttrTranslate  = "translate"
	AttrLayer      = "layer"
	AttrRole       = "role"
	AttrLabel      = "label"
	AttrA11yID     = "a11y_id"
)

var layoutAttributes = map[string]bool{
	AttrWidth:     true,
	AttrHeight:    true,
	AttrDirection: true,
	AttrPadding:   true,
	AttrRole:      true,
	AttrLabel:     true,
	AttrA11yID:    true,
}

// EffectOf returns what a change to the named attribute invalidates.
func EffectOf(name string) AttributeEffect {
	if layoutAttributes[name] {
		return EffectLayout
	}
	return EffectPaint
}

// ParseLength parses "auto", "fill", "50%" or a pixel count.
func ParseLength(s string) (Length, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "auto":
		return Length{Kind: LengthAuto}, true
	case "fill":
		return Fill(), true
	}
	var v float32
	if strings.HasSuffix(s, "%") {
		if !parseFloat(strings.TrimSuffix(s, "%"), &v) {
			return Length{}, false
		}
		return Percent(v), true
	}
	if !parseFloat(s, &v) {
		return Length{}, false
	}
	return Pixels(v), true
}

// setAttribute applies a single attribute to n. Values that fail to parse leave the
// node untouched and report false.
func (n *Node) setAttribute(name, value string) bool {
	switch name {
	case AttrWidth:
		l, ok := ParseLength(value)
		if ok {
			n.Width = l
		}
		return ok
	case AttrHeight:
		l, ok := ParseLength(value)
		if ok {
			n.Height = l
		}
		return ok
	case AttrDirection:
		switch value {
		case "horizontal":
			n.Direction = Horizontal
		case "vertical", "":
			n.Direction = Vertical
		default:
			return false
		}
		return true
	case AttrPadding:
		return parseFloat(value, &n.Padding)
	case AttrBackground:
		n.Background = value
		return true
	case AttrColor:
		n.Color = value
		return true
	case AttrOpacity:
		var v float32
		if !parseFloat(value, &v) {
			return false
		}
		n.Opacity = clamp01(v)
		return true
	case AttrRotate:
		return parseFloat(strings.TrimSuffix(strings.TrimSpace(value), "deg"), &n.Rotate)
	case AttrScale:
		fields := strings.Fields(value)
		switch len(fields) {
		case 1:
			var v float32
			if !parseFloat(fields[0], &v) {
				return false
			}
			n.ScaleX, n.ScaleY = v, v
			return true
		case 2:
			var x, y float32
			if !parseFloat(fields[0], &x) || !parseFloat(fields[1], &y) {
				return false
			}
			n.ScaleX, n.ScaleY = x, y
			return true
		}
		return false
	case AttrTranslate:
		fields := strings.Fields(value)
		var x, y float32
		if len(fields) != 2 || !parseFloat(fields[0], &x) || !parseFloat(fields[1], &y) {
			return false
		}
		n.TranslateX, n.TranslateY = x, y
		return true
	case AttrLayer:
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return false
		}
		n.Layer = v
		return true
	case AttrRole:
		n.Role = value
		return true
	case AttrLabel:
		n.Label = value
		return true
	case AttrA11yID:
		if strings.TrimSpace(value) == "" {
			n.Accessible = false
			n.AccessibilityID = 0
			return true
		}
		v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil || v == uint64(RootAccessibilityID) {
			return false
		}
		n.Accessible = true
		n.AccessibilityID = AccessibilityID(v)
		return true
	}
	if n.Extra == nil {
		n.Extra = make(map[string]string)
	}
	n.Extra[name] = value
	return true
}

// parseFloat stores s in dst. NaN and infinities are rejected, since they would
// poison layout and opacity checks.
func parseFloat(s string, dst *float32) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	*dst = float32(v)
	return true
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
