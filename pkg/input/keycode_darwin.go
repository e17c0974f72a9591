//go:build darwin

package input

import (
	"fmt"
	"strconv"
	"strings"
)

// macKeycodes maps canonical key names to macOS virtual keycodes (the
// kVK_ANSI_* / kVK_* constants from Carbon's Events.h).
var macKeycodes = map[string]uint16{
	"a": 0, "s": 1, "d": 2, "f": 3, "h": 4, "g": 5, "z": 6, "x": 7,
	"c": 8, "v": 9, "b": 11, "q": 12, "w": 13, "e": 14, "r": 15,
	"y": 16, "t": 17, "1": 18, "2": 19, "3": 20, "4": 21, "6": 22,
	"5": 23, "=": 24, "9": 25, "7": 26, "-": 27, "8": 28, "0": 29,
	"]": 30, "o": 31, "u": 32, "[": 33, "i": 34, "p": 35,
	"enter": 36, "l": 37, "j": 38, "'": 39, "k": 40, ";": 41,
	"\\": 42, ",": 43, "/": 44, "n": 45, "m": 46, ".": 47,
	"tab": 48, "space": 49, "`": 50, "backspace": 51, "esc": 53,
	"win": 55, "shift": 56, "capslock": 57, "alt": 58, "ctrl": 59,
	"shiftright": 60, "altright": 61, "ctrlright": 62, "fn": 63,
	"f5": 96, "f6": 97, "f7": 98, "f3": 99, "f8": 100, "f9": 101,
	"f11": 103, "f10": 109, "f12": 111, "insert": 114, "home": 115,
	"pageup": 116, "del": 117, "f4": 118, "end": 119, "f2": 120,
	"pagedown": 121, "f1": 122, "left": 123, "right": 124,
	"down": 125, "up": 126,
	"num0": 82, "num1": 83, "num2": 84, "num3": 85, "num4": 86,
	"num5": 87, "num6": 88, "num7": 89, "num8": 91, "num9": 92,
	"numlock": 71, "pause": 113, "printscreen": 105, "scrolllock": 107,
	"winleft": 55, "winright": 54, "altleft": 58, "ctrlleft": 59,
	"shiftleft": 56,
}

// macKeyNames inverts macKeycodes. Aliases like "shiftleft" share a keycode
// with the plain spelling; the shortest name wins (ties lexicographically)
// so the resolved name never depends on map iteration order.
var macKeyNames = func() map[uint16]string {
	names := make(map[uint16]string, len(macKeycodes))
	for name, code := range macKeycodes {
		current, taken := names[code]
		if !taken || len(name) < len(current) || (len(name) == len(current) && name < current) {
			names[code] = name
		}
	}
	return names
}()

// keyName resolves a virtual keycode to its canonical name, falling back to
// a numeric spelling so unmapped keys still round-trip through a recording.
func keyName(code uint16) string {
	if name, ok := macKeyNames[code]; ok {
		return name
	}
	return fmt.Sprintf("key:%d", code)
}

// keyCode resolves a canonical key name back to a virtual keycode.
func keyCode(name string) (uint16, error) {
	normalized := NormalizeKey(name)
	if code, ok := macKeycodes[normalized]; ok {
		return code, nil
	}
	if rest, ok := strings.CutPrefix(normalized, "key:"); ok {
		code, err := strconv.ParseUint(rest, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric key %q", name)
		}
		return uint16(code), nil
	}
	return 0, fmt.Errorf("no macOS keycode for key %q", name)
}
