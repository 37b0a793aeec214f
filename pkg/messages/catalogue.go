package messages

import "encoding/json"

// DeviceMove moves a device; previous_x/previous_y make it invertible.
type DeviceMove struct {
	Header
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	PreviousX float64 `json:"previous_x"`
	PreviousY float64 `json:"previous_y"`
}

type DeviceCreate struct {
	Header
	ID   int     `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name"`
	Type string  `json:"type"`
}

type DeviceDestroy struct {
	Header
	ID           int     `json:"id"`
	PreviousX    float64 `json:"previous_x"`
	PreviousY    float64 `json:"previous_y"`
	PreviousName string  `json:"previous_name"`
	PreviousType string  `json:"previous_type"`
}

type DeviceLabelEdit struct {
	Header
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PreviousName string `json:"previous_name"`
}

type DeviceSelected struct {
	Header
	ID int `json:"id"`
}

type DeviceUnSelected struct {
	Header
	ID int `json:"id"`
}

type InterfaceCreate struct {
	Header
	DeviceID int    `json:"device_id"`
	ID       int    `json:"id"`
	Name     string `json:"name"`
}

type InterfaceLabelEdit struct {
	Header
	ID           int    `json:"id"`
	DeviceID     int    `json:"device_id"`
	Name         string `json:"name"`
	PreviousName string `json:"previous_name"`
}

type LinkLabelEdit struct {
	Header
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PreviousName string `json:"previous_name"`
}

type LinkCreate struct {
	Header
	ID              int    `json:"id"`
	Name            string `json:"name"`
	FromDeviceID    int    `json:"from_device_id"`
	ToDeviceID      int    `json:"to_device_id"`
	FromInterfaceID int    `json:"from_interface_id"`
	ToInterfaceID   int    `json:"to_interface_id"`
}

type LinkDestroy struct {
	Header
	ID              int    `json:"id"`
	Name            string `json:"name"`
	FromDeviceID    int    `json:"from_device_id"`
	ToDeviceID      int    `json:"to_device_id"`
	FromInterfaceID int    `json:"from_interface_id"`
	ToInterfaceID   int    `json:"to_interface_id"`
}

type LinkSelected struct {
	Header
	ID int `json:"id"`
}

type LinkUnSelected struct {
	Header
	ID int `json:"id"`
}

// Undo carries the frame of the message being undone.
type Undo struct {
	Header
	OriginalMessage Frame `json:"original_message"`
}

// Redo carries the frame of the message being redone.
type Redo struct {
	Header
	OriginalMessage Frame `json:"original_message"`
}

type Deploy struct{ Header }

type Destroy struct{ Header }

type Discover struct{ Header }

type Layout struct{ Header }

// MultipleMessage batches messages; each keeps its own message id.
type MultipleMessage struct {
	Header
	Messages []Message `json:"messages"`
}

func (m *MultipleMessage) UnmarshalJSON(b []byte) error {
	var raw struct {
		Header
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.Header = raw.Header
	m.Messages = make([]Message, 0, len(raw.Messages))
	for _, r := range raw.Messages {
		sub, err := DecodeObject(r)
		if err != nil {
			return err
		}
		m.Messages = append(m.Messages, sub)
	}
	return nil
}

// Coverage passes test instrumentation through untouched.
type Coverage struct {
	Header
	Coverage json.RawMessage `json:"coverage"`
}

type MouseEvent struct {
	Header
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Type string  `json:"type"`
}

type OriginalEvent struct {
	MetaKey bool `json:"metaKey"`
}

type MouseWheelEvent struct {
	Header
	Delta         float64       `json:"delta"`
	DeltaX        float64       `json:"deltaX"`
	DeltaY        float64       `json:"deltaY"`
	Type          string        `json:"type"`
	OriginalEvent OriginalEvent `json:"originalEvent"`
}

type KeyEvent struct {
	Header
	Key      string `json:"key"`
	KeyCode  int    `json:"keyCode"`
	Type     string `json:"type"`
	AltKey   bool   `json:"altKey"`
	ShiftKey bool   `json:"shiftKey"`
	CtrlKey  bool   `json:"ctrlKey"`
	MetaKey  bool   `json:"metaKey"`
}

// Touch is one contact point of a TouchEvent.
type Touch struct {
	Identifier int     `json:"identifier"`
	PageX      float64 `json:"pageX"`
	PageY      float64 `json:"pageY"`
}

type TouchEvent struct {
	Header
	Type    string  `json:"type"`
	Touches []Touch `json:"touches"`
}

type StartRecording struct{ Header }

type StopRecording struct{ Header }

type ViewPort struct {
	Header
	Scale float64 `json:"scale"`
	PanX  float64 `json:"panX"`
	PanY  float64 `json:"panY"`
}

type CopySite struct {
	Header
	Site json.RawMessage `json:"site"`
}

type GroupMove struct {
	Header
	ID         int     `json:"id"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	PreviousX1 float64 `json:"previous_x1"`
	PreviousY1 float64 `json:"previous_y1"`
	PreviousX2 float64 `json:"previous_x2"`
	PreviousY2 float64 `json:"previous_y2"`
}

type GroupCreate struct {
	Header
	ID   int     `json:"id"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	Name string  `json:"name"`
	Type string  `json:"type"`
}

type GroupDestroy struct {
	Header
	ID           int     `json:"id"`
	PreviousX1   float64 `json:"previous_x1"`
	PreviousY1   float64 `json:"previous_y1"`
	PreviousX2   float64 `json:"previous_x2"`
	PreviousY2   float64 `json:"previous_y2"`
	PreviousName string  `json:"previous_name"`
	PreviousType string  `json:"previous_type"`
}

type GroupLabelEdit struct {
	Header
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PreviousName string `json:"previous_name"`
}

type GroupSelected struct {
	Header
	ID int `json:"id"`
}

type GroupUnSelected struct {
	Header
	ID int `json:"id"`
}

// GroupMembership lists every device id in a group after a change.
type GroupMembership struct {
	Header
	ID      int   `json:"id"`
	Members []int `json:"members"`
}

type TableCellEdit struct {
	Header
	Sheet    string `json:"sheet"`
	Col      int    `json:"col"`
	Row      int    `json:"row"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

type ProcessCreate struct {
	Header
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	DeviceID int     `json:"device_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type StreamCreate struct {
	Header
	ID     int    `json:"id"`
	FromID int    `json:"from_id"`
	ToID   int    `json:"to_id"`
	Label  string `json:"label"`
}

type StreamDestroy struct {
	Header
	ID     int    `json:"id"`
	FromID int    `json:"from_id"`
	ToID   int    `json:"to_id"`
	Label  string `json:"label"`
}

type StreamLabelEdit struct {
	Header
	ID            int    `json:"id"`
	Label         string `json:"label"`
	PreviousLabel string `json:"previous_label"`
}

type StreamSelected struct {
	Header
	ID int `json:"id"`
}

type StreamUnSelected struct {
	Header
	ID int `json:"id"`
}

func (*DeviceMove) TypeName() string         { return "DeviceMove" }
func (*DeviceCreate) TypeName() string       { return "DeviceCreate" }
func (*DeviceDestroy) TypeName() string      { return "DeviceDestroy" }
func (*DeviceLabelEdit) TypeName() string    { return "DeviceLabelEdit" }
func (*DeviceSelected) TypeName() string     { return "DeviceSelected" }
func (*DeviceUnSelected) TypeName() string   { return "DeviceUnSelected" }
func (*InterfaceCreate) TypeName() string    { return "InterfaceCreate" }
func (*InterfaceLabelEdit) TypeName() string { return "InterfaceLabelEdit" }
func (*LinkLabelEdit) TypeName() string      { return "LinkLabelEdit" }
func (*LinkCreate) TypeName() string         { return "LinkCreate" }
func (*LinkDestroy) TypeName() string        { return "LinkDestroy" }
func (*LinkSelected) TypeName() string       { return "LinkSelected" }
func (*LinkUnSelected) TypeName() string     { return "LinkUnSelected" }
func (*Undo) TypeName() string               { return "Undo" }
func (*Redo) TypeName() string               { return "Redo" }
func (*Deploy) TypeName() string             { return "Deploy" }
func (*Destroy) TypeName() string            { return "Destroy" }
func (*Discover) TypeName() string           { return "Discover" }
func (*Layout) TypeName() string             { return "Layout" }
func (*MultipleMessage) TypeName() string    { return "MultipleMessage" }
func (*Coverage) TypeName() string           { return "Coverage" }
func (*MouseEvent) TypeName() string         { return "MouseEvent" }
func (*MouseWheelEvent) TypeName() string    { return "MouseWheelEvent" }
func (*KeyEvent) TypeName() string           { return "KeyEvent" }
func (*TouchEvent) TypeName() string         { return "TouchEvent" }
func (*StartRecording) TypeName() string     { return "StartRecording" }
func (*StopRecording) TypeName() string      { return "StopRecording" }
func (*ViewPort) TypeName() string           { return "ViewPort" }
func (*CopySite) TypeName() string           { return "CopySite" }
func (*GroupMove) TypeName() string          { return "GroupMove" }
func (*GroupCreate) TypeName() string        { return "GroupCreate" }
func (*GroupDestroy) TypeName() string       { return "GroupDestroy" }
func (*GroupLabelEdit) TypeName() string     { return "GroupLabelEdit" }
func (*GroupSelected) TypeName() string      { return "GroupSelected" }
func (*GroupUnSelected) TypeName() string    { return "GroupUnSelected" }
func (*GroupMembership) TypeName() string    { return "GroupMembership" }
func (*TableCellEdit) TypeName() string      { return "TableCellEdit" }
func (*ProcessCreate) TypeName() string      { return "ProcessCreate" }
func (*StreamCreate) TypeName() string       { return "StreamCreate" }
func (*StreamDestroy) TypeName() string      { return "StreamDestroy" }
func (*StreamLabelEdit) TypeName() string    { return "StreamLabelEdit" }
func (*StreamSelected) TypeName() string     { return "StreamSelected" }
func (*StreamUnSelected) TypeName() string   { return "StreamUnSelected" }

func init() {
	register[DeviceMove]()
	register[DeviceCreate]()
	register[DeviceDestroy]()
	register[DeviceLabelEdit]()
	register[DeviceSelected]()
	register[DeviceUnSelected]()
	register[InterfaceCreate]()
	register[InterfaceLabelEdit]()
	register[LinkLabelEdit]()
	register[LinkCreate]()
	register[LinkDestroy]()
	register[LinkSelected]()
	register[LinkUnSelected]()
	register[Undo]()
	register[Redo]()
	register[Deploy]()
	register[Destroy]()
	register[Discover]()
	register[Layout]()
	register[MultipleMessage]()
	register[Coverage]()
	register[MouseEvent]()
	register[MouseWheelEvent]()
	register[KeyEvent]()
	register[TouchEvent]()
	register[StartRecording]()
	register[StopRecording]()
	register[ViewPort]()
	register[CopySite]()
	register[GroupMove]()
	register[GroupCreate]()
	register[GroupDestroy]()
	register[GroupLabelEdit]()
	register[GroupSelected]()
	register[GroupUnSelected]()
	register[GroupMembership]()
	register[TableCellEdit]()
	register[ProcessCreate]()
	register[StreamCreate]()
	register[StreamDestroy]()
	register[StreamLabelEdit]()
	register[StreamSelected]()
	register[StreamUnSelected]()

	register[ClientID]()
	register[Topology]()
	register[Snapshot]()
	register[History]()
	register[ToolboxItem]()
	register[TaskStatus]()
	register[DeviceStatus]()
	register[Facts]()
}
