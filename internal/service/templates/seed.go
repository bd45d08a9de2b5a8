package templates

import "slidecraft/internal/model"

var seed = []model.TemplateStyle{
	{
		ID:        "corporate",
		Name:      "Corporate Pro",
		Primary:   "#1e40af",
		Secondary: "#3b82f6",
		Accent:    "#60a5fa",
		Gradient:  "linear-gradient(135deg, #1e40af 0%, #3b82f6 100%)",
		BgPattern: "corporate",
	},
	{
		ID:        "creative",
		Name:      "Creative Flow",
		Primary:   "#7c3aed",
		Secondary: "#8b5cf6",
		Accent:    "#a78bfa",
		Gradient:  "linear-gradient(135deg, #7c3aed 0%, #8b5cf6 100%)",
		BgPattern: "creative",
	},
	{
		ID:        "modern",
		Name:      "Modern Tech",
		Primary:   "#059669",
		Secondary: "#10b981",
		Accent:    "#34d399",
		Gradient:  "linear-gradient(135deg, #059669 0%, #10b981 100%)",
		BgPattern: "modern",
	},
	{
		ID:        "vibrant",
		Name:      "Vibrant Energy",
		Primary:   "#dc2626",
		Secondary: "#ef4444",
		Accent:    "#f87171",
		Gradient:  "linear-gradient(135deg, #dc2626 0%, #ef4444 100%)",
		BgPattern: "vibrant",
	},
}
