package apicall

import "github.com/oastrace/oastrace/paramstyle"

// ParamOption customizes a single With* parameter call's style, explode
// flag, or required-ness.
type ParamOption func(*paramOpts)

type paramOpts struct {
	style    paramstyle.Style
	explode  bool
	required bool
}

// Style overrides the parameter's default serialization style.
func Style(s paramstyle.Style) ParamOption {
	return func(o *paramOpts) { o.style = s }
}

// Explode sets the parameter's explode flag.
func Explode(explode bool) ParamOption {
	return func(o *paramOpts) { o.explode = explode }
}

// Required marks a query, header, or cookie parameter required. Path
// parameters are always required regardless of this option.
func Required() ParamOption {
	return func(o *paramOpts) { o.required = true }
}

// resolveParamOpts applies loc's defaults, then opts in order.
func resolveParamOpts(loc paramstyle.Location, opts []ParamOption) paramOpts {
	cfg := paramOpts{style: paramstyle.DefaultStyle(loc)}
	if loc == paramstyle.Path {
		cfg.required = true
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if loc == paramstyle.Path {
		cfg.required = true
	}
	return cfg
}
