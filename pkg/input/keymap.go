package input

import "strings"

// legacyKeys translates the pynput-style spellings used by older recording
// files into canonical key names. Canonical names are lower-case and have no
// prefix: "a", "esc", "shift", "f5".
var legacyKeys = map[string]string{
	"Key.alt":             "alt",
	"Key.alt_l":           "altleft",
	"Key.alt_r":           "altright",
	"Key.ctrl":            "ctrl",
	"Key.ctrl_l":          "ctrlleft",
	"Key.ctrl_r":          "ctrlright",
	"Key.shift":           "shift",
	"Key.shift_l":         "shiftleft",
	"Key.shift_r":         "shiftright",
	"Key.cmd":             "win",
	"Key.cmd_l":           "winleft",
	"Key.cmd_r":           "winright",
	"Key.space":           "space",
	"Key.enter":           "enter",
	"Key.tab":             "tab",
	"Key.backspace":       "backspace",
	"Key.delete":          "del",
	"Key.esc":             "esc",
	"Key.caps_lock":       "capslock",
	"Key.print_screen":    "printscreen",
	"Key.scroll_lock":     "scrolllock",
	"Key.pause":           "pause",
	"Key.insert":          "insert",
	"Key.home":            "home",
	"Key.end":             "end",
	"Key.page_up":         "pageup",
	"Key.page_down":       "pagedown",
	"Key.up":              "up",
	"Key.down":            "down",
	"Key.left":            "left",
	"Key.right":           "right",
	"Key.num_lock":        "numlock",
	"Key.keypad_enter":    "enter",
	"Key.keypad_add":      "+",
	"Key.keypad_subtract": "-",
	"Key.keypad_multiply": "*",
	"Key.keypad_divide":   "/",
	"Key.keypad_decimal":  ".",
}

// legacyButtons translates pynput mouse button spellings.
var legacyButtons = map[string]string{
	"Button.left":   "left",
	"Button.right":  "right",
	"Button.middle": "middle",
}

// NormalizeKey maps a key identifier to its canonical name. Already-canonical
// names pass through unchanged; legacy pynput spellings ("Key.esc") and
// function/keypad forms are translated.
func NormalizeKey(key string) string {
	trimmed := strings.TrimSpace(key)
	// Older files wrap printable characters in quotes: "'a'".
	if len(trimmed) >= 3 && strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	if trimmed == "" {
		return ""
	}
	if mapped, ok := legacyKeys[trimmed]; ok {
		return mapped
	}
	if rest, ok := strings.CutPrefix(trimmed, "Key.keypad_"); ok {
		return "num" + rest
	}
	if rest, ok := strings.CutPrefix(trimmed, "Key."); ok {
		return strings.ToLower(rest)
	}
	// Single printable characters keep their case folded away; key names are
	// case-insensitive in the recording format.
	return strings.ToLower(trimmed)
}

// NormalizeButton maps a button identifier to left, right, or middle,
// defaulting to left for anything unrecognised.
func NormalizeButton(button string) string {
	trimmed := strings.TrimSpace(button)
	if mapped, ok := legacyButtons[trimmed]; ok {
		return mapped
	}
	switch strings.ToLower(trimmed) {
	case "left", "right", "middle":
		return strings.ToLower(trimmed)
	}
	return "left"
}

// KeySet builds a membership set of canonical key names.
func KeySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		normalized := NormalizeKey(key)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}
