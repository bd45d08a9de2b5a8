package exporter

import (
	"strconv"
	"strings"
)

// rgb 颜色分量
type rgb struct {
	R, G, B int
}

var fallbackColor = rgb{R: 30, G: 64, B: 175}

// parseHexColor 解析 #RRGGBB / RRGGBB / #RGB，非法输入返回默认蓝色
func parseHexColor(s string) rgb {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return fallbackColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallbackColor
	}
	return rgb{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}
}

// hex 大写 RRGGBB
func (c rgb) hex() string {
	const digits = "0123456789ABCDEF"
	b := []byte{
		digits[c.R>>4&0xf], digits[c.R&0xf],
		digits[c.G>>4&0xf], digits[c.G&0xf],
		digits[c.B>>4&0xf], digits[c.B&0xf],
	}
	return string(b)
}

// argb 不透明 AARRGGBB
func (c rgb) argb() string {
	return "FF" + c.hex()
}

// palette 模板配色
type palette struct {
	primary   rgb
	secondary rgb
	accent    rgb
}

func newPalette(primary, secondary, accent string) palette {
	return palette{
		primary:   parseHexColor(primary),
		secondary: parseHexColor(secondary),
		accent:    parseHexColor(accent),
	}
}
