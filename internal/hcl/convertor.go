package hcl

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Converter bridges native Go values and cty values.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
// Struct fields take part only when they carry a `cty` tag.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}

// ToJSON renders v as JSON through its cty representation. Object
// attributes and map keys come out in lexical order, so equal values always
// produce identical bytes.
func (c *Converter) ToJSON(v any) ([]byte, error) {
	val, err := c.ToCtyValue(v)
	if err != nil {
		return nil, err
	}
	return ctyjson.Marshal(val, val.Type())
}
