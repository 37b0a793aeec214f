// Package export encodes topology documents for download and automation.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Interface is a device port with the far end of its link, if any.
type Interface struct {
	Name                string `yaml:"name" json:"name"`
	Network             int    `yaml:"network,omitempty" json:"network,omitempty"`
	RemoteDeviceName    string `yaml:"remote_device_name,omitempty" json:"remote_device_name,omitempty"`
	RemoteInterfaceName string `yaml:"remote_interface_name,omitempty" json:"remote_interface_name,omitempty"`
	ID                  int    `yaml:"id" json:"id"`
}

type Device struct {
	Name       string      `yaml:"name" json:"name"`
	Type       string      `yaml:"type" json:"type"`
	X          float64     `yaml:"x" json:"x"`
	Y          float64     `yaml:"y" json:"y"`
	ID         int         `yaml:"id" json:"id"`
	Interfaces []Interface `yaml:"interfaces" json:"interfaces"`
}

type Link struct {
	FromDevice      string `yaml:"from_device" json:"from_device"`
	ToDevice        string `yaml:"to_device" json:"to_device"`
	FromInterface   string `yaml:"from_interface" json:"from_interface"`
	ToInterface     string `yaml:"to_interface" json:"to_interface"`
	FromDeviceID    int    `yaml:"from_device_id" json:"from_device_id"`
	ToDeviceID      int    `yaml:"to_device_id" json:"to_device_id"`
	FromInterfaceID int    `yaml:"from_interface_id" json:"from_interface_id"`
	ToInterfaceID   int    `yaml:"to_interface_id" json:"to_interface_id"`
	Name            string `yaml:"name" json:"name"`
	Network         int    `yaml:"network" json:"network"`
}

// Document is the topology as automation consumes it.
type Document struct {
	Name       string   `yaml:"name" json:"name"`
	TopologyID int      `yaml:"topology_id" json:"topology_id"`
	Devices    []Device `yaml:"devices" json:"devices"`
	Links      []Link   `yaml:"links" json:"links"`
}

// YAML writes doc as block-style YAML.
func YAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// JSON writes doc as indented JSON.
func JSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ReadYAML decodes a document written by YAML.
func ReadYAML(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &doc, nil
}
