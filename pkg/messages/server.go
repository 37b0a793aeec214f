package messages

import "encoding/json"

// ClientID assigns the receiving client its id. On the wire it is the bare
// number under the frame type "id".
type ClientID struct {
	Header
	ID int
}

func (c ClientID) MarshalJSON() ([]byte, error) { return json.Marshal(c.ID) }

func (c *ClientID) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &c.ID) }

// Topology describes the topology a client joined.
type Topology struct {
	Header
	TopologyID  int     `json:"topology_id"`
	Name        string  `json:"name"`
	PanX        float64 `json:"panX"`
	PanY        float64 `json:"panY"`
	Scale       float64 `json:"scale"`
	DeviceIDSeq int     `json:"device_id_seq"`
	LinkIDSeq   int     `json:"link_id_seq"`
	GroupIDSeq  int     `json:"group_id_seq"`
	StreamIDSeq int     `json:"stream_id_seq"`
}

type SnapshotInterface struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type SnapshotProcess struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Type string  `json:"type"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
}

type SnapshotDevice struct {
	ID             int                 `json:"id"`
	Name           string              `json:"name"`
	X              float64             `json:"x"`
	Y              float64             `json:"y"`
	Type           string              `json:"type"`
	InterfaceIDSeq int                 `json:"interface_id_seq"`
	ProcessIDSeq   int                 `json:"process_id_seq"`
	Interfaces     []SnapshotInterface `json:"interfaces"`
	Processes      []SnapshotProcess   `json:"processes"`
}

type SnapshotLink struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	FromDeviceID    int    `json:"from_device_id"`
	ToDeviceID      int    `json:"to_device_id"`
	FromInterfaceID int    `json:"from_interface_id"`
	ToInterfaceID   int    `json:"to_interface_id"`
}

type SnapshotGroup struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Members []int   `json:"members,omitempty"`
}

type SnapshotStream struct {
	ID     int    `json:"id"`
	FromID int    `json:"from_id"`
	ToID   int    `json:"to_id"`
	Label  string `json:"label"`
}

// Snapshot is the full state of a topology.
type Snapshot struct {
	Header
	TopologyID int              `json:"topology_id,omitempty"`
	Devices    []SnapshotDevice `json:"devices"`
	Links      []SnapshotLink   `json:"links"`
	Groups     []SnapshotGroup  `json:"groups"`
	Streams    []SnapshotStream `json:"streams"`
}

// History replays the stored message log of a topology. On the wire it is
// the bare list of frames.
type History struct {
	Header
	Messages []Frame
}

func (h History) MarshalJSON() ([]byte, error) {
	if h.Messages == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.Messages)
}

func (h *History) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &h.Messages) }

// ToolboxItem offers a shared template to a toolbox. Data is the JSON
// encoding of the template; for the Site toolbox it decodes as a Site.
type ToolboxItem struct {
	Header
	ToolboxName string `json:"toolbox_name"`
	Data        string `json:"data"`
}

// SiteStream is a stream inside a site template.
type SiteStream struct {
	ID         int    `json:"id"`
	FromDevice int    `json:"from_device"`
	ToDevice   int    `json:"to_device"`
	Label      string `json:"label"`
}

// Site is a site template: a group with the items it contains.
type Site struct {
	ID      int              `json:"id"`
	Name    string           `json:"name"`
	Type    string           `json:"type"`
	X1      float64          `json:"x1"`
	Y1      float64          `json:"y1"`
	X2      float64          `json:"x2"`
	Y2      float64          `json:"y2"`
	Devices []SnapshotDevice `json:"devices"`
	Groups  []SnapshotGroup  `json:"groups"`
	Links   []SnapshotLink   `json:"links"`
	Streams []SiteStream     `json:"streams"`
}

// TaskStatus reports an automation task against a named device. Status is
// "pass" or "fail"; nil fields are left unchanged.
type TaskStatus struct {
	Header
	DeviceName string  `json:"device_name"`
	TaskID     int     `json:"task_id"`
	Status     *string `json:"status"`
	Working    *bool   `json:"working"`
}

type DeviceStatus struct {
	Header
	Name    string  `json:"name"`
	Status  *string `json:"status"`
	Working *bool   `json:"working"`
}

// Facts carries gathered facts for the host named by Key.
type Facts struct {
	Header
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// PTMPort is one port entry of the ptm local fact.
type PTMPort struct {
	Port      string `json:"port"`
	CblStatus string `json:"cbl status"`
}

// Neighbor is one LLDP peer.
type Neighbor struct {
	Host string `json:"host"`
	Port string `json:"port"`
}

// FactsValue is the part of a host's facts the editor reads.
type FactsValue struct {
	AnsibleLocal *struct {
		PTM map[string]PTMPort `json:"ptm"`
	} `json:"ansible_local"`
	AnsibleNetNeighbors map[string][]Neighbor `json:"ansible_net_neighbors"`
}

// Decode decodes Value.
func (f *Facts) Decode() (FactsValue, error) {
	var v FactsValue
	if len(f.Value) == 0 {
		return v, nil
	}
	err := json.Unmarshal(f.Value, &v)
	return v, err
}

func (*ClientID) TypeName() string     { return "ClientId" }
func (*Topology) TypeName() string     { return "Topology" }
func (*Snapshot) TypeName() string     { return "Snapshot" }
func (*History) TypeName() string      { return "History" }
func (*ToolboxItem) TypeName() string  { return "ToolboxItem" }
func (*TaskStatus) TypeName() string   { return "TaskStatus" }
func (*DeviceStatus) TypeName() string { return "DeviceStatus" }
func (*Facts) TypeName() string        { return "Facts" }
