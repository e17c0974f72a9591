//go:build !darwin

package input

import "fmt"

// SystemSource reports that no global hook backend exists on this platform.
// The engine still runs against injected sources (tests, imported files).
func SystemSource() (Source, error) {
	return nil, fmt.Errorf("%w: global input capture is only implemented on macOS", ErrHookInstall)
}

// SystemSynthesizer reports that no input posting backend exists on this
// platform.
func SystemSynthesizer() (Synthesizer, error) {
	return nil, fmt.Errorf("%w: input synthesis is only implemented on macOS", ErrHookInstall)
}
