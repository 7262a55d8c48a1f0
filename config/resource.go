package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

// AttributeMap is a free-form set of model specific attributes.
type AttributeMap map[string]interface{}

// A Component describes the configuration of a component such as an obstacle sensor or a
// status LED.
type Component struct {
	Name       string       `json:"name"`
	API        string       `json:"api"`
	Model      string       `json:"model"`
	Attributes AttributeMap `json:"attributes"`

	ConvertedAttributes interface{} `json:"-"`
}

type validator interface {
	Validate(path string) error
}

// String returns a short representation of the component config.
func (c *Component) String() string {
	return fmt.Sprintf("%s/%s:%s", c.API, c.Model, c.Name)
}

// Validate ensures all parts of the config are valid.
func (c *Component) Validate(path string) error {
	if c.Name == "" {
		return NewFieldRequiredError(path, "name")
	}
	if c.API == "" {
		return NewFieldRequiredError(path, "api")
	}
	if c.Model == "" {
		return NewFieldRequiredError(path, "model")
	}
	if v, ok := c.ConvertedAttributes.(validator); ok {
		if err := v.Validate(path + ".attributes"); err != nil {
			return err
		}
	}
	return nil
}

// TransformAttributeMapToStruct decodes an attribute map into the given struct pointer using
// the struct's json tags.
func TransformAttributeMapToStruct(to interface{}, attributes AttributeMap) (interface{}, error) {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      to,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode attributes")
	}
	return to, nil
}

// ComponentsTable renders the components as a table with columns of name, api and model.
func ComponentsTable(components []Component) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Name", "API", "Model"})
	for i, c := range components {
		t.AppendRow(table.Row{fmt.Sprintf("%d", i+1), c.Name, c.API, c.Model})
	}
	return t.Render()
}
