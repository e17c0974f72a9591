//go:build darwin

package input

/*
#cgo darwin LDFLAGS: -framework CoreGraphics -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdint.h>

static Boolean axCheckTrusted(void) {
	const void *keys[] = { kAXTrustedCheckOptionPrompt };
	const void *values[] = { kCFBooleanTrue };
	CFDictionaryRef options = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
	                                             &kCFTypeDictionaryKeyCallBacks,
	                                             &kCFTypeDictionaryValueCallBacks);
	Boolean trusted = AXIsProcessTrustedWithOptions(options);
	CFRelease(options);
	return trusted;
}

extern CGEventRef goHandleInputEvent(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *userInfo);

static CFRunLoopSourceRef startEventTap(uintptr_t handle, CGEventMask mask, CFMachPortRef *tapOut) {
	CFMachPortRef tap = CGEventTapCreate(kCGSessionEventTap,
	                                     kCGHeadInsertEventTap,
	                                     kCGEventTapOptionListenOnly,
	                                     mask,
	                                     goHandleInputEvent,
	                                     (void *)handle);
	if (tap == NULL) {
		return NULL;
	}
	CGEventTapEnable(tap, true);
	CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
	*tapOut = tap;
	return source;
}

static CFRunLoopRef currentRunLoop(void) {
	return CFRunLoopGetCurrent();
}

static CGEventMask cgEventMaskBit(CGEventType type) {
	return ((CGEventMask)1) << type;
}

static void addSourceToRunLoop(CFRunLoopRef loop, CFRunLoopSourceRef source) {
	CFRunLoopAddSource(loop, source, kCFRunLoopCommonModes);
}

static void runCurrentRunLoop(void) {
	CFRunLoopRun();
}

static void stopRunLoop(CFRunLoopRef loop) {
	CFRunLoopStop(loop);
}

static double cgEventGetX(CGEventRef event) {
	CGPoint point = CGEventGetLocation(event);
	return point.x;
}

static double cgEventGetY(CGEventRef event) {
	CGPoint point = CGEventGetLocation(event);
	return point.y;
}

static int64_t cgEventGetKeycode(CGEventRef event) {
	return CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
}

static int64_t cgEventGetScrollDelta(CGEventRef event, int axis) {
	if (axis == 2) {
		return CGEventGetIntegerValueField(event, kCGScrollWheelEventDeltaAxis2);
	}
	return CGEventGetIntegerValueField(event, kCGScrollWheelEventDeltaAxis1);
}

static int64_t cgEventGetButtonNumber(CGEventRef event) {
	return CGEventGetIntegerValueField(event, kCGMouseEventButtonNumber);
}

static void postKeyEvent(uint16_t keycode, bool down) {
	CGEventRef e = CGEventCreateKeyboardEvent(NULL, (CGKeyCode)keycode, down);
	if (e == NULL) {
		return;
	}
	CGEventPost(kCGHIDEventTap, e);
	CFRelease(e);
}

static void postMouseEvent(CGEventType type, double x, double y, int button) {
	CGPoint point = CGPointMake(x, y);
	CGEventRef e = CGEventCreateMouseEvent(NULL, type, point, (CGMouseButton)button);
	if (e == NULL) {
		return;
	}
	CGEventPost(kCGHIDEventTap, e);
	CFRelease(e);
}

static void postScrollEvent(int32_t dy, int32_t dx) {
	CGEventRef e = CGEventCreateScrollWheelEvent(NULL, kCGScrollEventUnitPixel, 2, dy, dx);
	if (e == NULL) {
		return;
	}
	CGEventPost(kCGHIDEventTap, e);
	CFRelease(e);
}

static void currentPointer(double *x, double *y) {
	CGEventRef e = CGEventCreate(NULL);
	CGPoint point = CGEventGetLocation(e);
	*x = point.x;
	*y = point.y;
	CFRelease(e);
}
*/
import "C"

import (
	"context"
	"fmt"
	"runtime"
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/offlinefirst/replaykit/pkg/event"
)

// SystemSource installs a listen-only Quartz event tap for the duration of
// each Stream call. Requires Accessibility trust.
func SystemSource() (Source, error) {
	if C.axCheckTrusted() == C.Boolean(0) {
		return nil, fmt.Errorf("%w: %v", ErrHookInstall, ErrAccessibilityPermission)
	}
	return &macSource{}, nil
}

type macSource struct{}

type macStream struct {
	emit      func(Notification) error
	loop      C.CFRunLoopRef
	stopped   chan struct{}
	stopLoop  func()
	err       error
	closeOnce sync.Once
}

func (s *macStream) close() {
	s.closeOnce.Do(func() {
		close(s.stopped)
	})
}

func (s *macStream) setErr(err error) {
	if err == nil {
		return
	}
	if s.err == nil {
		s.err = err
	}
}

func (s *macStream) emitNotification(n Notification) {
	if s.err != nil {
		return
	}
	if err := s.emit(n); err != nil {
		s.setErr(err)
		if s.stopLoop != nil {
			s.stopLoop()
		}
	}
}

func (s *macSource) Stream(ctx context.Context, emit func(Notification) error) error {
	if C.axCheckTrusted() == C.Boolean(0) {
		return fmt.Errorf("%w: %v", ErrHookInstall, ErrAccessibilityPermission)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// The tap's run loop must stay on one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	stream := &macStream{emit: emit, stopped: make(chan struct{})}
	handle := cgo.NewHandle(stream)
	defer handle.Delete()

	mask := C.cgEventMaskBit(C.kCGEventKeyDown) |
		C.cgEventMaskBit(C.kCGEventKeyUp) |
		C.cgEventMaskBit(C.kCGEventLeftMouseDown) |
		C.cgEventMaskBit(C.kCGEventLeftMouseUp) |
		C.cgEventMaskBit(C.kCGEventRightMouseDown) |
		C.cgEventMaskBit(C.kCGEventRightMouseUp) |
		C.cgEventMaskBit(C.kCGEventOtherMouseDown) |
		C.cgEventMaskBit(C.kCGEventOtherMouseUp) |
		C.cgEventMaskBit(C.kCGEventMouseMoved) |
		C.cgEventMaskBit(C.kCGEventScrollWheel)

	var tap C.CFMachPortRef
	source := C.startEventTap(C.uintptr_t(handle), mask, &tap)
	if source == 0 {
		return fmt.Errorf("%w: CGEvent tap creation refused", ErrHookInstall)
	}
	defer C.CFRelease(C.CFTypeRef(source))
	defer C.CFRelease(C.CFTypeRef(tap))

	loop := C.currentRunLoop()
	stream.loop = loop
	stopOnce := sync.Once{}
	stream.stopLoop = func() {
		stopOnce.Do(func() {
			C.stopRunLoop(loop)
		})
	}
	C.addSourceToRunLoop(loop, source)

	cancelWatcher := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			stream.stopLoop()
		case <-stream.stopped:
		}
		close(cancelWatcher)
	}()

	C.runCurrentRunLoop()
	stream.stopLoop()
	stream.close()
	<-cancelWatcher

	if stream.err != nil {
		return stream.err
	}
	return ctx.Err()
}

//export goHandleInputEvent
func goHandleInputEvent(_ C.CGEventTapProxy, eventType C.CGEventType, cgEvent C.CGEventRef, userInfo unsafe.Pointer) C.CGEventRef {
	handle := cgo.Handle(uintptr(userInfo))
	stream, ok := handle.Value().(*macStream)
	if !ok {
		return cgEvent
	}

	x := int(C.cgEventGetX(cgEvent))
	y := int(C.cgEventGetY(cgEvent))

	switch eventType {
	case C.kCGEventKeyDown, C.kCGEventKeyUp:
		kind := event.KeyDown
		if eventType == C.kCGEventKeyUp {
			kind = event.KeyUp
		}
		code := uint16(C.cgEventGetKeycode(cgEvent))
		stream.emitNotification(Notification{Kind: kind, Key: keyName(code)})
	case C.kCGEventMouseMoved:
		stream.emitNotification(Notification{Kind: event.MouseMove, X: x, Y: y})
	case C.kCGEventLeftMouseDown:
		stream.emitNotification(Notification{Kind: event.MouseDown, Button: "left", X: x, Y: y})
	case C.kCGEventLeftMouseUp:
		stream.emitNotification(Notification{Kind: event.MouseUp, Button: "left", X: x, Y: y})
	case C.kCGEventRightMouseDown:
		stream.emitNotification(Notification{Kind: event.MouseDown, Button: "right", X: x, Y: y})
	case C.kCGEventRightMouseUp:
		stream.emitNotification(Notification{Kind: event.MouseUp, Button: "right", X: x, Y: y})
	case C.kCGEventOtherMouseDown:
		if C.cgEventGetButtonNumber(cgEvent) == 2 {
			stream.emitNotification(Notification{Kind: event.MouseDown, Button: "middle", X: x, Y: y})
		}
	case C.kCGEventOtherMouseUp:
		if C.cgEventGetButtonNumber(cgEvent) == 2 {
			stream.emitNotification(Notification{Kind: event.MouseUp, Button: "middle", X: x, Y: y})
		}
	case C.kCGEventScrollWheel:
		dx := int(C.cgEventGetScrollDelta(cgEvent, 2))
		dy := int(C.cgEventGetScrollDelta(cgEvent, 1))
		stream.emitNotification(Notification{Kind: event.Scroll, X: x, Y: y, DX: dx, DY: dy})
	}

	return cgEvent
}

// SystemSynthesizer posts CGEvents at the HID tap point. Requires
// Accessibility trust.
func SystemSynthesizer() (Synthesizer, error) {
	if C.axCheckTrusted() == C.Boolean(0) {
		return nil, fmt.Errorf("%w: %v", ErrHookInstall, ErrAccessibilityPermission)
	}
	x, y, _ := pointerPosition()
	return &macSynthesizer{x: x, y: y}, nil
}

type macSynthesizer struct {
	mu   sync.Mutex
	x, y int
}

func (m *macSynthesizer) MoveTo(x, y int) error {
	C.postMouseEvent(C.kCGEventMouseMoved, C.double(x), C.double(y), 0)
	m.mu.Lock()
	m.x, m.y = x, y
	m.mu.Unlock()
	return nil
}

func (m *macSynthesizer) KeyDown(key string) error {
	code, err := keyCode(key)
	if err != nil {
		return err
	}
	C.postKeyEvent(C.uint16_t(code), true)
	return nil
}

func (m *macSynthesizer) KeyUp(key string) error {
	code, err := keyCode(key)
	if err != nil {
		return err
	}
	C.postKeyEvent(C.uint16_t(code), false)
	return nil
}

func (m *macSynthesizer) ButtonDown(button string) error {
	eventType, buttonNumber := buttonEvent(button, true)
	m.mu.Lock()
	x, y := m.x, m.y
	m.mu.Unlock()
	C.postMouseEvent(eventType, C.double(x), C.double(y), C.int(buttonNumber))
	return nil
}

func (m *macSynthesizer) ButtonUp(button string) error {
	eventType, buttonNumber := buttonEvent(button, false)
	m.mu.Lock()
	x, y := m.x, m.y
	m.mu.Unlock()
	C.postMouseEvent(eventType, C.double(x), C.double(y), C.int(buttonNumber))
	return nil
}

func (m *macSynthesizer) Scroll(dx, dy int) error {
	C.postScrollEvent(C.int32_t(dy), C.int32_t(dx))
	return nil
}

func (m *macSynthesizer) Position() (int, int, error) {
	return pointerPosition()
}

func pointerPosition() (int, int, error) {
	var x, y C.double
	C.currentPointer(&x, &y)
	return int(x), int(y), nil
}

func buttonEvent(button string, down bool) (C.CGEventType, int) {
	switch NormalizeButton(button) {
	case "right":
		if down {
			return C.kCGEventRightMouseDown, 1
		}
		return C.kCGEventRightMouseUp, 1
	case "middle":
		if down {
			return C.kCGEventOtherMouseDown, 2
		}
		return C.kCGEventOtherMouseUp, 2
	default:
		if down {
			return C.kCGEventLeftMouseDown, 0
		}
		return C.kCGEventLeftMouseUp, 0
	}
}
