package db

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Load reads and validates a netlist from JSON.
func Load(r io.Reader) (*Database, error) {
	var d Database
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode netlist: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile reads and validates a netlist JSON file.
func LoadFile(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open netlist: %w", err)
	}
	defer f.Close()

	d, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("netlist %s: %w", path, err)
	}
	return d, nil
}

// SaveFile writes the database (including placed coordinates) as JSON.
// Uses temp file + rename so a failed write never corrupts an existing file.
func (d *Database) SaveFile(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize netlist: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp netlist file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename netlist file: %w", err)
	}
	return nil
}
