package dashboard

// Icon is a symbolic weather icon category.
type Icon string

const (
	IconSun          Icon = "sun"
	IconPartlyCloudy Icon = "partly-cloudy"
	IconRain         Icon = "rain"
	IconHeavyShowers Icon = "heavy-showers"
	IconThunder      Icon = "thunder"
	IconCloud        Icon = "cloud"
)

var iconClasses = map[Icon]string{
	IconSun:          "fa-sun",
	IconPartlyCloudy: "fa-cloud-sun",
	IconRain:         "fa-cloud-rain",
	IconHeavyShowers: "fa-cloud-showers-heavy",
	IconThunder:      "fa-bolt",
	IconCloud:        "fa-cloud",
}

// Class returns the icon font class.
func (i Icon) Class() string {
	if c, ok := iconClasses[i]; ok {
		return c
	}
	return iconClasses[IconCloud]
}

// IconFor maps a WMO condition code to an icon. Thunder must be tested
// before heavy showers since every code >= 95 is also >= 80.
func IconFor(code int) Icon {
	switch {
	case code == 0:
		return IconSun
	case code >= 1 && code <= 3:
		return IconPartlyCloudy
	case code >= 51 && code <= 65:
		return IconRain
	case code >= 95:
		return IconThunder
	case code >= 80:
		return IconHeavyShowers
	default:
		return IconCloud
	}
}

// IconTreatment is the icon plus its visual treatment. Clear sky is the only
// animated condition.
type IconTreatment struct {
	Icon     Icon   `json:"icon"`
	Class    string `json:"class"`
	Animated bool   `json:"animated"`
	Color    string `json:"color"`
}

// TreatmentFor returns the icon treatment for a condition code.
func TreatmentFor(code int) IconTreatment {
	icon := IconFor(code)
	t := IconTreatment{Icon: icon, Class: icon.Class(), Color: "#fff"}
	if icon == IconSun {
		t.Animated = true
		t.Color = "#f59e0b"
	}
	return t
}
