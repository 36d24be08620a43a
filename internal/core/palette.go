package core

// Fixed icon and color palettes for categories. Category edits are validated
// against these sets; anything outside them is rejected.

var CategoryIcons = []string{
	"🍕", "🛒", "🚗", "🏠", "💊", "🎬", "✈️", "📚",
	"👕", "🎁", "💡", "📱", "🏋️", "🐶", "☕", "🍺",
	"💼", "💰", "📈", "🏦", "🧾", "🎓", "🔧", "💳",
}

var CategoryColors = []string{
	"#6B7280", // gray
	"#F87171", // red
	"#FB923C", // orange
	"#FACC15", // yellow
	"#4ADE80", // green
	"#60A5FA", // blue
	"#A78BFA", // purple
	"#F472B6", // pink
	"#818CF8", // indigo
	"#2DD4BF", // teal
	"#22D3EE", // cyan
	"#A3E635", // lime
	"#34D399", // emerald
	"#FB7185", // rose
	"#8B5CF6", // violet
}

func ValidIcon(icon string) bool {
	for _, i := range CategoryIcons {
		if i == icon {
			return true
		}
	}
	return false
}

func ValidColor(color string) bool {
	for _, c := range CategoryColors {
		if c == color {
			return true
		}
	}
	return false
}
