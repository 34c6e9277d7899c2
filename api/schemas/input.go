package schemas

// -- Input Schemas --
//
// Agnostic input event structures. The concrete driver (CDP today) maps
// these onto its own protocol; the action bodies never see protocol types.

// MouseEventType defines the type of mouse event. The strings align with
// standard DOM event types and common automation protocols.
type MouseEventType string

const (
	MouseMove    MouseEventType = "mouseMoved"
	MousePress   MouseEventType = "mousePressed"
	MouseRelease MouseEventType = "mouseReleased"
)

// MouseButton defines the mouse button involved in an event.
type MouseButton string

const (
	ButtonNone   MouseButton = "none"
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// MouseEvent holds the data required to dispatch one mouse event.
type MouseEvent struct {
	Type MouseEventType
	X    float64
	Y    float64
	// Button that was pressed or released; relevant for press/release.
	Button MouseButton
	// ClickCount is the number of consecutive clicks (2 for double-click).
	ClickCount int
	// Buttons is a bitfield of buttons currently held (1: left, 2: right,
	// 4: middle). Required for realistic dragging.
	Buttons int64
}
