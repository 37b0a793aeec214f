package editor

import (
	"fmt"

	"github.com/ha1tch/netui/pkg/messages"
	"github.com/ha1tch/netui/pkg/model"
)

// Kind identifies an event travelling down the machine chain.
type Kind int

const (
	MouseDown Kind = iota
	MouseUp
	MouseMove
	MouseWheel
	KeyDown
	TouchStart
	TouchMove
	TouchEnd
	Message
	NewDevice
	PasteDevice
	PasteProcess
	NewGroup
	PasteGroup
	PasteRack
	PasteSite
	NewLink
	NewStream
	UnselectAll
	Enable
	Disable
	ToggleToolbox
)

var kindNames = [...]string{
	MouseDown:     "MouseDown",
	MouseUp:       "MouseUp",
	MouseMove:     "MouseMove",
	MouseWheel:    "MouseWheel",
	KeyDown:       "KeyDown",
	TouchStart:    "TouchStart",
	TouchMove:     "TouchMove",
	TouchEnd:      "TouchEnd",
	Message:       "Message",
	NewDevice:     "NewDevice",
	PasteDevice:   "PasteDevice",
	PasteProcess:  "PasteProcess",
	NewGroup:      "NewGroup",
	PasteGroup:    "PasteGroup",
	PasteRack:     "PasteRack",
	PasteSite:     "PasteSite",
	NewLink:       "NewLink",
	NewStream:     "NewStream",
	UnselectAll:   "UnselectAll",
	Enable:        "Enable",
	Disable:       "Disable",
	ToggleToolbox: "ToggleToolbox",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Mod is a set of held modifier keys.
type Mod uint8

const (
	ModShift Mod = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Key codes the machines react to.
const (
	KeyBackspace = 8
	KeyEnter     = 13
	KeyEscape    = 27
	KeySpace     = 32
	KeyDelete    = 46
)

// Event is one input, inbound frame or internal command. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind Kind

	// Pointer position in screen coordinates for mouse events.
	X, Y float64

	Delta, DeltaX, DeltaY float64

	Key     string
	KeyCode int
	Mod     Mod

	Touches []messages.Touch

	// Frame is a raw inbound frame; Msg an already decoded one.
	Frame []byte
	Msg   messages.Message

	DeviceType string
	GroupType  string
	Item       model.ToolboxItem

	// Target names the machine an Enable or Disable is meant for.
	Target string
}

func (ev Event) has(m Mod) bool { return ev.Mod&m != 0 }

// command reports whether a ctrl or meta modifier is held.
func (ev Event) command() bool { return ev.has(ModCtrl) || ev.has(ModMeta) }
