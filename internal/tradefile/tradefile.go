// Package tradefile reads trade records from JSON, YAML and CSV files.
package tradefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/newthinker/tradelens/internal/core"
)

// Format identifies a trade file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported trade file extension %q", filepath.Ext(path))
}

// envelope is the object form of JSON and YAML files.
type envelope struct {
	Trades []core.TradeRecord `json:"trades" yaml:"trades"`
}

// Load reads every record in the file at path.
func Load(path string) ([]core.TradeRecord, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trade file: %w", err)
	}
	defer f.Close()

	records, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Decode parses records in the given format. JSON and YAML accept either a
// top-level list or an object with a "trades" list.
func Decode(r io.Reader, format Format) ([]core.TradeRecord, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatYAML:
		return decodeYAML(r)
	case FormatCSV:
		return decodeCSV(r)
	}
	return nil, fmt.Errorf("unsupported trade file format %q", format)
}

func decodeJSON(r io.Reader) ([]core.TradeRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []core.TradeRecord{}, nil
	}

	if data[0] == '[' {
		var records []core.TradeRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return records, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return env.Trades, nil
}

func decodeYAML(r io.Reader) ([]core.TradeRecord, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if err == io.EOF {
			return []core.TradeRecord{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	doc := &node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}

	if doc.Kind == yaml.SequenceNode {
		var records []core.TradeRecord
		if err := doc.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return records, nil
	}

	var env envelope
	if err := doc.Decode(&env); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return env.Trades, nil
}

func decodeCSV(r io.Reader) ([]core.TradeRecord, error) {
	var records []core.TradeRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	return records, nil
}
