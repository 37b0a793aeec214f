package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sample() *Document {
	return &Document{
		Name:       "lab",
		TopologyID: 1,
		Devices: []Device{
			{Name: "leaf1", Type: "switch", X: 10, Y: 20, ID: 1, Interfaces: []Interface{
				{Name: "swp1", Network: 1, RemoteDeviceName: "spine1", RemoteInterfaceName: "swp9", ID: 1},
			}},
			{Name: "spine1", Type: "switch", ID: 2, Interfaces: []Interface{
				{Name: "swp9", Network: 1, RemoteDeviceName: "leaf1", RemoteInterfaceName: "swp1", ID: 1},
			}},
		},
		Links: []Link{{
			FromDevice: "leaf1", ToDevice: "spine1", FromInterface: "swp1", ToInterface: "swp9",
			FromDeviceID: 1, ToDeviceID: 2, FromInterfaceID: 1, ToInterfaceID: 1, Name: "l1", Network: 1,
		}},
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := YAML(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"name: lab", "remote_device_name: spine1", "from_interface_id: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	doc, err := ReadYAML(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Devices) != 2 || doc.Devices[0].Interfaces[0].RemoteInterfaceName != "swp9" {
		t.Errorf("got %+v", doc.Devices)
	}
}

func TestJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	links := raw["links"].([]any)
	link := links[0].(map[string]any)
	if link["to_device"] != "spine1" || link["network"] != 1.0 {
		t.Errorf("got %v", link)
	}
}
