package svgfile

import "strings"

// NormalizeColor lowercases a colour and writes hex colours as #rrggbb.
// "none" and the empty string normalize to "".
func NormalizeColor(c string) string {
	s := strings.TrimSpace(strings.ToLower(c))
	if s == "" || s == "none" {
		return ""
	}
	hex := strings.TrimPrefix(s, "#")
	if !isHex(hex) {
		return s
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return "#" + hex
}

// extractStrokeColor prefers the stroke attribute over a stroke entry in
// the style attribute ("stroke:#000000;stroke-width:2;fill:none").
func extractStrokeColor(strokeAttr, styleAttr string) string {
	if strokeAttr != "" {
		return NormalizeColor(strokeAttr)
	}
	for _, p := range strings.Split(styleAttr, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(p), ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(strings.ToLower(key)) == "stroke" {
			return NormalizeColor(val)
		}
	}
	return ""
}

func isHex(s string) bool {
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}
