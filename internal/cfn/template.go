// Package cfn builds the CloudFormation template for the declarative
// provisioning path. The template model covers only the sections this
// tool emits; rendering goes through yaml.v3 or encoding/json.
package cfn

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Template is a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string               `yaml:"AWSTemplateFormatVersion" json:"AWSTemplateFormatVersion"`
	Description              string               `yaml:"Description,omitempty" json:"Description,omitempty"`
	Parameters               map[string]Parameter `yaml:"Parameters,omitempty" json:"Parameters,omitempty"`
	Resources                map[string]*Resource `yaml:"Resources" json:"Resources"`
	Outputs                  map[string]Output    `yaml:"Outputs,omitempty" json:"Outputs,omitempty"`
}

// Parameter is a template input parameter.
type Parameter struct {
	Type           string `yaml:"Type" json:"Type"`
	Default        string `yaml:"Default,omitempty" json:"Default,omitempty"`
	Description    string `yaml:"Description,omitempty" json:"Description,omitempty"`
	AllowedPattern string `yaml:"AllowedPattern,omitempty" json:"AllowedPattern,omitempty"`
}

// Resource is a single template resource.
type Resource struct {
	Type       string         `yaml:"Type" json:"Type"`
	DependsOn  []string       `yaml:"DependsOn,omitempty" json:"DependsOn,omitempty"`
	Properties map[string]any `yaml:"Properties,omitempty" json:"Properties,omitempty"`
}

// Output is a template output value.
type Output struct {
	Description string `yaml:"Description,omitempty" json:"Description,omitempty"`
	Value       any    `yaml:"Value" json:"Value"`
}

// NewTemplate returns an empty template with the standard format version.
func NewTemplate(description string) *Template {
	return &Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              description,
		Parameters:               map[string]Parameter{},
		Resources:                map[string]*Resource{},
		Outputs:                  map[string]Output{},
	}
}

// YAML renders the template as YAML.
func (t *Template) YAML() ([]byte, error) {
	data, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to render template as YAML: %w", err)
	}
	return data, nil
}

// JSON renders the template as indented JSON.
func (t *Template) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render template as JSON: %w", err)
	}
	return data, nil
}

// Intrinsic function helpers.

// Ref returns a Ref intrinsic for the named resource or parameter.
func Ref(name string) map[string]any {
	return map[string]any{"Ref": name}
}

// GetAtt returns an Fn::GetAtt intrinsic.
func GetAtt(name, attr string) map[string]any {
	return map[string]any{"Fn::GetAtt": []string{name, attr}}
}

// Sub returns an Fn::Sub intrinsic.
func Sub(s string) map[string]any {
	return map[string]any{"Fn::Sub": s}
}

// SelectAZ returns an Fn::Select over Fn::GetAZs for the stack's region.
func SelectAZ(index int) map[string]any {
	return map[string]any{
		"Fn::Select": []any{index, map[string]any{"Fn::GetAZs": ""}},
	}
}

// Join returns an Fn::Join intrinsic over the given values.
func Join(sep string, values []any) map[string]any {
	return map[string]any{"Fn::Join": []any{sep, values}}
}
