package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iancoleman/orderedmap"
	"gopkg.in/yaml.v3"

	"github.com/ajxudir/updatecheck/pkg/releases"
	"github.com/ajxudir/updatecheck/pkg/resolver"
)

// WriteResult writes a resolution result in a structured format.
//
// Parameters:
//   - w: Destination for the document
//   - format: FormatJSON or FormatYAML
//   - result: The resolution result
//
// Returns:
//   - error: When the format is not structured or writing fails
func WriteResult(w io.Writer, format Format, result *resolver.Result) error {
	return WriteDocument(w, format, EncodeResult(result))
}

// WriteReleases writes a release list in a structured format.
func WriteReleases(w io.Writer, format Format, list []releases.Release) error {
	return WriteDocument(w, format, EncodeReleases(list))
}

// WriteDocument encodes an ordered document as indented JSON or as YAML.
//
// Parameters:
//   - w: Destination for the document
//   - format: FormatJSON or FormatYAML
//   - doc: An *orderedmap.OrderedMap, a slice of them, or any value json can encode
//
// Returns:
//   - error: When the format is not structured or encoding fails
func WriteDocument(w io.Writer, format Format, doc interface{}) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	case FormatYAML:
		node, err := toNode(doc)
		if err != nil {
			return err
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(node); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("format %q is not a structured format", format)
	}
}

// toNode builds a YAML node tree that keeps the key order of ordered maps.
// Strings are tagged so values such as "3.1" stay quoted.
func toNode(v interface{}) (*yaml.Node, error) {
	switch val := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *orderedmap.OrderedMap:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range val.Keys() {
			child, _ := val.Get(key)
			valueNode, err := toNode(child)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, valueNode)
		}
		return node, nil
	case orderedmap.OrderedMap:
		return toNode(&val)
	case []*orderedmap.OrderedMap:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range val {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: val}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(val)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(val, 'f', -1, 64)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.Itoa(val)}, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, err
		}
		return node, nil
	}
}
