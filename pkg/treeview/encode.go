package treeview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/rbset/pkg/rbtree"
)

// Supported document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const yamlIndent = 2

// ErrUnsupportedFormat is returned for unknown output formats.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Document is the serialized form of a set.
type Document struct {
	Root        *rbtree.Snapshot `json:"root"         yaml:"root"`
	Keys        []int32          `json:"keys"         yaml:"keys,flow"`
	Size        int              `json:"size"         yaml:"size"`
	Height      int              `json:"height"       yaml:"height"`
	BlackHeight int              `json:"black_height" yaml:"black_height"`
}

// NewDocument captures the current state of tree.
func NewDocument(tree *rbtree.RBTree) Document {
	keys := tree.Keys()
	if keys == nil {
		keys = []int32{}
	}

	return Document{
		Root:        tree.Snapshot(),
		Keys:        keys,
		Size:        tree.Len(),
		Height:      tree.Height(),
		BlackHeight: tree.BlackHeight(),
	}
}

// Encode writes doc as indented JSON or YAML.
func Encode(out io.Writer, doc Document, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		err := enc.Encode(doc)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(doc)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		err = enc.Close()
		if err != nil {
			return fmt.Errorf("close yaml encoder: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
