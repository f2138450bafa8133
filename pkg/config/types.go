package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is one lifecycle as it appears in a stub document.
type Entry struct {
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	UUID        string        `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Request     RequestConfig `json:"request" yaml:"request"`
	Response    ResponseList  `json:"response" yaml:"response"`
}

// RequestConfig is the request pattern of an entry. File is read at parse
// time and used as Post.
type RequestConfig struct {
	Method               MethodList        `json:"method" yaml:"method"`
	URL                  string            `json:"url" yaml:"url"`
	Query                map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
	Headers              map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Post                 string            `json:"post,omitempty" yaml:"post,omitempty"`
	File                 string            `json:"file,omitempty" yaml:"file,omitempty"`
	JSONPath             map[string]any    `json:"jsonpath,omitempty" yaml:"jsonpath,omitempty"`
	RequireAuthorization bool              `json:"require_authorization,omitempty" yaml:"require_authorization,omitempty"`
}

// ResponseConfig is one response of an entry. Status and latency stay
// textual so a bad value fails the request that selects it rather than the
// whole document.
type ResponseConfig struct {
	Status  string            `json:"status,omitempty" yaml:"status,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
	File    string            `json:"file,omitempty" yaml:"file,omitempty"`
	Latency string            `json:"latency,omitempty" yaml:"latency,omitempty"`
}

// MethodList accepts either a single method or a list of methods.
type MethodList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *MethodList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*m = MethodList{node.Value}
		return nil
	case yaml.SequenceNode:
		var methods []string
		if err := node.Decode(&methods); err != nil {
			return err
		}
		*m = methods
		return nil
	default:
		return fmt.Errorf("line %d: method must be a string or a list of strings", node.Line)
	}
}

// MarshalYAML emits a scalar for a single method.
func (m MethodList) MarshalYAML() (any, error) {
	if len(m) == 1 {
		return m[0], nil
	}
	return []string(m), nil
}

// ResponseList accepts either a single response mapping or a sequence.
type ResponseList []ResponseConfig

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *ResponseList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var single ResponseConfig
		if err := node.Decode(&single); err != nil {
			return err
		}
		*r = ResponseList{single}
		return nil
	case yaml.SequenceNode:
		var list []ResponseConfig
		if err := node.Decode(&list); err != nil {
			return err
		}
		*r = list
		return nil
	default:
		return fmt.Errorf("line %d: response must be a mapping or a list of mappings", node.Line)
	}
}

// MarshalYAML emits a mapping for a single response.
func (r ResponseList) MarshalYAML() (any, error) {
	if len(r) == 1 {
		return r[0], nil
	}
	return []ResponseConfig(r), nil
}
