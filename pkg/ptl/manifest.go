package ptl

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Static errors for err113 compliance.
var (
	ErrServicesNotMapping = errors.New("services must be a mapping of service name to configuration")
	ErrInvalidBuild       = errors.New("build must be a path or a {context, zippack} mapping")
	ErrServiceNotFound    = errors.New("service not found in manifest")
)

// Manifest is the parsed ptl.yml application manifest.
type Manifest struct {
	Name     string         `yaml:"name"`
	Context  *RepoContext   `yaml:"context,omitempty"`
	Services Services       `yaml:"services"`
	Extra    map[string]any `yaml:",inline"`
}

// Service is one named deployable unit of a manifest.
type Service struct {
	Name  string         `yaml:"-"`
	Build *Build         `yaml:"build,omitempty"`
	Extra map[string]any `yaml:",inline"`
}

// HasBuild reports whether the service declares a build path.
func (s Service) HasBuild() bool {
	return s.Build != nil && s.Build.Path != ""
}

// Build is a service's build field: either a plain path or a mapping with
// a context key. After packing it carries the original path plus the
// base64 zippack. Other mapping keys (dockerfile, args, ...) are kept in
// Extra and written back unchanged.
type Build struct {
	Path    string         `yaml:"context"`
	ZipPack string         `yaml:"zippack,omitempty"`
	Extra   map[string]any `yaml:",inline"`
}

// Packed reports whether a zippack has been attached.
func (b Build) Packed() bool {
	return b.ZipPack != ""
}

// UnmarshalYAML accepts either a scalar path or the packed mapping.
func (b *Build) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		b.Path = node.Value
		b.ZipPack = ""
		b.Extra = nil

		return nil
	case yaml.MappingNode:
		type plain Build

		var decoded plain

		if err := node.Decode(&decoded); err != nil {
			return fmt.Errorf("decoding build: %w", err)
		}

		if decoded.Path == "" {
			return fmt.Errorf("line %d: build mapping has no context: %w", node.Line, ErrInvalidBuild)
		}

		*b = Build(decoded)

		return nil
	default:
		return fmt.Errorf("line %d: %w", node.Line, ErrInvalidBuild)
	}
}

// MarshalYAML writes a build with neither zippack nor extra keys back as a
// scalar path.
func (b Build) MarshalYAML() (interface{}, error) {
	if !b.Packed() && len(b.Extra) == 0 {
		return b.Path, nil
	}

	return struct {
		Context string         `yaml:"context"`
		ZipPack string         `yaml:"zippack,omitempty"`
		Extra   map[string]any `yaml:",inline"`
	}{Context: b.Path, ZipPack: b.ZipPack, Extra: b.Extra}, nil
}

// Services is the ordered services mapping of a manifest.
type Services []Service

// UnmarshalYAML decodes the mapping while keeping declaration order.
func (s *Services) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %w", node.Line, ErrServicesNotMapping)
	}

	services := make(Services, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		service := Service{Name: keyNode.Value}

		// "web:" with no body is a valid, empty service.
		if valueNode.Kind != yaml.ScalarNode || valueNode.Tag != "!!null" {
			if err := valueNode.Decode(&service); err != nil {
				return fmt.Errorf("service %q: %w", keyNode.Value, err)
			}
		}

		service.Name = keyNode.Value
		services = append(services, service)
	}

	*s = services

	return nil
}

// MarshalYAML emits the services as a mapping in declaration order.
func (s Services) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, service := range s {
		var value yaml.Node

		if service.Build == nil && len(service.Extra) == 0 {
			// A service declared with no body stays null.
			value = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		} else if err := value.Encode(service); err != nil {
			return nil, fmt.Errorf("encoding service %q: %w", service.Name, err)
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: service.Name},
			&value,
		)
	}

	return node, nil
}

// Get returns the named service.
func (s Services) Get(name string) (Service, bool) {
	for _, service := range s {
		if service.Name == name {
			return service, true
		}
	}

	return Service{}, false
}

// Buildable returns the services that declare a build path, in order.
func (s Services) Buildable() []Service {
	var out []Service

	for _, service := range s {
		if service.HasBuild() {
			out = append(out, service)
		}
	}

	return out
}

// Clone returns a copy of the manifest that shares no mutable top-level
// state with the receiver. Extra maps are copied one level deep.
func (m *Manifest) Clone() *Manifest {
	clone := &Manifest{
		Name:     m.Name,
		Services: make(Services, len(m.Services)),
		Extra:    copyMap(m.Extra),
	}

	if m.Context != nil {
		ctx := *m.Context
		clone.Context = &ctx
	}

	for i, service := range m.Services {
		clone.Services[i] = service.clone()
	}

	return clone
}

// WithContext returns a copy of the manifest carrying the repository context.
func (m *Manifest) WithContext(ctx RepoContext) *Manifest {
	clone := m.Clone()
	clone.Context = &ctx

	return clone
}

// WithZipPack returns a copy of the manifest in which the named service's
// build is replaced by {context: <original path>, zippack: zipPack}.
func (m *Manifest) WithZipPack(serviceName, zipPack string) (*Manifest, error) {
	clone := m.Clone()

	for i := range clone.Services {
		if clone.Services[i].Name != serviceName {
			continue
		}

		if !clone.Services[i].HasBuild() {
			return nil, fmt.Errorf("service %q has no build path: %w", serviceName, ErrInvalidBuild)
		}

		clone.Services[i].Build = &Build{
			Path:    clone.Services[i].Build.Path,
			ZipPack: zipPack,
			Extra:   clone.Services[i].Build.Extra,
		}

		return clone, nil
	}

	return nil, fmt.Errorf("%q: %w", serviceName, ErrServiceNotFound)
}

// Encode serializes the manifest as YAML.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}

	return data, nil
}

// DecodeManifest parses a YAML manifest document.
func DecodeManifest(data []byte) (*Manifest, error) {
	var manifest Manifest

	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	return &manifest, nil
}

func (s Service) clone() Service {
	out := Service{
		Name:  s.Name,
		Extra: copyMap(s.Extra),
	}

	if s.Build != nil {
		build := *s.Build
		build.Extra = copyMap(s.Build.Extra)
		out.Build = &build
	}

	return out
}

func copyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}
