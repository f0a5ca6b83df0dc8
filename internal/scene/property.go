package scene

// Property names an animatable object property. The set is fixed; anything
// else is rejected when an animation is created.
type Property string

const (
	PropPositionX Property = "position.x"
	PropPositionY Property = "position.y"
	PropPositionZ Property = "position.z"

	PropRotationX Property = "rotation.x"
	PropRotationY Property = "rotation.y"
	PropRotationZ Property = "rotation.z"

	PropScaleX       Property = "scale.x"
	PropScaleY       Property = "scale.y"
	PropScaleZ       Property = "scale.z"
	PropScaleUniform Property = "scale.uniform"

	PropOpacity Property = "opacity"

	PropColorR Property = "color.r"
	PropColorG Property = "color.g"
	PropColorB Property = "color.b"

	PropColorHue        Property = "color.hue"
	PropColorSaturation Property = "color.saturation"
	PropColorLightness  Property = "color.lightness"

	PropVisible Property = "visible"
)

var allProperties = map[Property]struct{}{
	PropPositionX: {}, PropPositionY: {}, PropPositionZ: {},
	PropRotationX: {}, PropRotationY: {}, PropRotationZ: {},
	PropScaleX: {}, PropScaleY: {}, PropScaleZ: {}, PropScaleUniform: {},
	PropOpacity: {},
	PropColorR:  {}, PropColorG: {}, PropColorB: {},
	PropColorHue: {}, PropColorSaturation: {}, PropColorLightness: {},
	PropVisible: {},
}

// ValidProperty returns true if p is in the animatable property set.
func ValidProperty(p Property) bool {
	_, ok := allProperties[p]
	return ok
}

// GetProperty reads a property from an object. Returns false when the
// object is nil or the property is backed by a material the object lacks.
func GetProperty(obj *Object, prop Property) (float64, bool) {
	if obj == nil {
		return 0, false
	}

	switch prop {
	case PropPositionX:
		return obj.Position.X, true
	case PropPositionY:
		return obj.Position.Y, true
	case PropPositionZ:
		return obj.Position.Z, true
	case PropRotationX:
		return obj.Rotation.X, true
	case PropRotationY:
		return obj.Rotation.Y, true
	case PropRotationZ:
		return obj.Rotation.Z, true
	case PropScaleX:
		return obj.Scale.X, true
	case PropScaleY:
		return obj.Scale.Y, true
	case PropScaleZ:
		return obj.Scale.Z, true
	case PropScaleUniform:
		// X axis stands in for the uniform scale.
		return obj.Scale.X, true
	case PropVisible:
		if obj.Visible {
			return 1, true
		}
		return 0, true
	}

	if obj.Material == nil {
		return 0, false
	}

	switch prop {
	case PropOpacity:
		return obj.Material.Opacity, true
	case PropColorR:
		return obj.Material.Color.R, true
	case PropColorG:
		return obj.Material.Color.G, true
	case PropColorB:
		return obj.Material.Color.B, true
	case PropColorHue:
		h, _, _ := RGBToHSL(obj.Material.Color)
		return h, true
	case PropColorSaturation:
		_, s, _ := RGBToHSL(obj.Material.Color)
		return s, true
	case PropColorLightness:
		_, _, l := RGBToHSL(obj.Material.Color)
		return l, true
	}

	return 0, false
}

// SetProperty writes a property on an object. Missing objects or
// material-backed properties on material-less objects are a silent no-op so
// one incompatible target never fails a whole scheduler tick. Writes to a
// single HSL channel preserve the other two channels exactly.
func SetProperty(obj *Object, prop Property, value float64) {
	if obj == nil {
		return
	}

	switch prop {
	case PropPositionX:
		obj.Position.X = value
		return
	case PropPositionY:
		obj.Position.Y = value
		return
	case PropPositionZ:
		obj.Position.Z = value
		return
	case PropRotationX:
		obj.Rotation.X = value
		return
	case PropRotationY:
		obj.Rotation.Y = value
		return
	case PropRotationZ:
		obj.Rotation.Z = value
		return
	case PropScaleX:
		obj.Scale.X = value
		return
	case PropScaleY:
		obj.Scale.Y = value
		return
	case PropScaleZ:
		obj.Scale.Z = value
		return
	case PropScaleUniform:
		obj.Scale.X = value
		obj.Scale.Y = value
		obj.Scale.Z = value
		return
	case PropVisible:
		obj.Visible = value > 0.5
		return
	}

	if obj.Material == nil {
		return
	}

	switch prop {
	case PropOpacity:
		obj.Material.Opacity = value
	case PropColorR:
		obj.Material.Color.R = value
	case PropColorG:
		obj.Material.Color.G = value
	case PropColorB:
		obj.Material.Color.B = value
	case PropColorHue:
		_, s, l := RGBToHSL(obj.Material.Color)
		obj.Material.Color = HSLToRGB(value, s, l)
	case PropColorSaturation:
		h, _, l := RGBToHSL(obj.Material.Color)
		obj.Material.Color = HSLToRGB(h, value, l)
	case PropColorLightness:
		h, s, _ := RGBToHSL(obj.Material.Color)
		obj.Material.Color = HSLToRGB(h, s, value)
	}
}
