package model

import (
	"maps"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// OptionKind is the value type of a configurable provider option.
type OptionKind string

const (
	KindBoolean OptionKind = "boolean"
	KindString  OptionKind = "string"
	KindNumber  OptionKind = "number"
	KindSelect  OptionKind = "select"
	KindArray   OptionKind = "array"
)

// OptionDescriptor describes one configurable parameter of a provider.
type OptionDescriptor struct {
	Name          string     `json:"name" yaml:"name"`
	Kind          OptionKind `json:"kind" yaml:"kind"`
	Default       any        `json:"default" yaml:"default"`
	AllowedValues []string   `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`
	Help          string     `json:"help" yaml:"help"`
}

// Validate checks that the default is a valid instance of the kind.
func (d OptionDescriptor) Validate() error {
	if d.Name == "" {
		return eris.New("option: empty name")
	}
	if d.Kind != KindSelect && len(d.AllowedValues) > 0 {
		return eris.Errorf("option %s: allowed values only apply to select", d.Name)
	}

	switch d.Kind {
	case KindBoolean:
		if _, ok := d.Default.(bool); !ok {
			return eris.Errorf("option %s: default %v is not a boolean", d.Name, d.Default)
		}
	case KindString:
		if _, ok := d.Default.(string); !ok {
			return eris.Errorf("option %s: default %v is not a string", d.Name, d.Default)
		}
	case KindNumber:
		switch d.Default.(type) {
		case int, int64, float64:
		default:
			return eris.Errorf("option %s: default %v is not a number", d.Name, d.Default)
		}
	case KindSelect:
		def, ok := d.Default.(string)
		if !ok {
			return eris.Errorf("option %s: default %v is not a string", d.Name, d.Default)
		}
		if !slices.Contains(d.AllowedValues, def) {
			return eris.Errorf("option %s: default %q not in allowed values %v", d.Name, def, d.AllowedValues)
		}
	case KindArray:
		if _, ok := d.Default.([]string); !ok {
			return eris.Errorf("option %s: default %v is not a string list", d.Name, d.Default)
		}
	default:
		return eris.Errorf("option %s: unknown kind %q", d.Name, d.Kind)
	}
	return nil
}

// coerce converts a caller-supplied value to the descriptor's kind.
func (d OptionDescriptor) coerce(v any) (any, error) {
	switch d.Kind {
	case KindBoolean:
		return cast.ToBoolE(v)
	case KindNumber:
		return cast.ToIntE(v)
	case KindString, KindSelect:
		return cast.ToStringE(v)
	case KindArray:
		if s, ok := v.(string); ok {
			return splitList(s), nil
		}
		return cast.ToStringSliceE(v)
	default:
		return nil, eris.Errorf("option %s: unknown kind %q", d.Name, d.Kind)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Schema is the ordered set of options a provider understands.
// Order is for display only.
type Schema []OptionDescriptor

// Lookup returns the descriptor for name.
func (s Schema) Lookup(name string) (OptionDescriptor, bool) {
	for _, d := range s {
		if d.Name == name {
			return d, true
		}
	}
	return OptionDescriptor{}, false
}

// Names returns the option names in display order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.Name
	}
	return names
}

// Validate checks the schema is non-empty, names are unique, and every
// descriptor is valid.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return eris.New("schema: no options")
	}
	seen := make(map[string]bool, len(s))
	for _, d := range s {
		if seen[d.Name] {
			return eris.Errorf("schema: duplicate option %q", d.Name)
		}
		seen[d.Name] = true
		if err := d.Validate(); err != nil {
			return eris.Wrap(err, "schema")
		}
	}
	return nil
}

// Options is the caller-supplied option bag. Every entry is optional.
type Options map[string]any

// Resolve projects the bag onto a schema. The result has one entry per
// schema option, typed by its kind, with defaults filled in. Keys the
// schema does not know are dropped. A value that cannot be coerced falls
// back to the default.
func (o Options) Resolve(schema Schema) Options {
	out := make(Options, len(schema))
	for _, d := range schema {
		out[d.Name] = d.Default
		v, ok := o[d.Name]
		if !ok || v == nil {
			continue
		}
		cv, err := d.coerce(v)
		if err != nil {
			zap.L().Warn("options: cannot coerce value, using default",
				zap.String("option", d.Name),
				zap.String("kind", string(d.Kind)),
				zap.Any("value", v),
				zap.Error(err),
			)
			continue
		}
		out[d.Name] = cv
	}
	return out
}

// Bool returns the named option as a bool.
func (o Options) Bool(name string) bool { return cast.ToBool(o[name]) }

// String returns the named option as a string.
func (o Options) String(name string) string { return cast.ToString(o[name]) }

// Int returns the named option as an int.
func (o Options) Int(name string) int { return cast.ToInt(o[name]) }

// Strings returns the named option as a string list.
func (o Options) Strings(name string) []string {
	if s, ok := o[name].(string); ok {
		return splitList(s)
	}
	return cast.ToStringSlice(o[name])
}

// legacyKeys maps option names from the older provider-native schema onto
// the canonical names.
var legacyKeys = map[string]string{
	"js_enabled":          OptRenderJS,
	"proxy_type":          OptProxyPool,
	"formats":             OptFormat,
	"skipTlsVerification": OptSkipTLSVerification,
	"onlyMainContent":     OptOnlyMainContent,
	"waitFor":             OptWaitFor,
}

// Canonical option names shared by every provider.
const (
	OptFormat              = "format"
	OptRenderJS            = "render_js"
	OptProxyPool           = "proxy_pool"
	OptCountry             = "country"
	OptLanguages           = "languages"
	OptOnlyMainContent     = "only_main_content"
	OptSkipTLSVerification = "skip_tls_verification"
	OptWaitFor             = "wait_for"
	OptTimeout             = "timeout"
	OptCache               = "cache"
	OptTargetSelector      = "target_selector"
	OptScreenshot          = "screenshot"
	OptResolveImages       = "resolve_images"
)

// Canonicalize rewrites deprecated option names onto their canonical
// names. A canonical key already present wins over its legacy alias.
// It returns the rewritten bag and the legacy keys that were seen.
func Canonicalize(opts Options) (Options, []string) {
	out := make(Options, len(opts))
	for k, v := range opts {
		if _, legacy := legacyKeys[k]; !legacy {
			out[k] = v
		}
	}

	var deprecated []string
	for _, k := range slices.Sorted(maps.Keys(opts)) {
		canonical, legacy := legacyKeys[k]
		if !legacy {
			continue
		}
		deprecated = append(deprecated, k)
		if _, exists := out[canonical]; exists {
			continue
		}
		v := opts[k]
		if canonical == OptFormat {
			v = firstFormat(v)
			switch v {
			case "screenshot", "screenshot@fullPage":
				if _, set := out[OptScreenshot]; !set {
					out[OptScreenshot] = true
				}
				continue
			}
		}
		out[canonical] = v
	}
	return out, deprecated
}

// firstFormat unwraps the legacy list-valued "formats" option.
func firstFormat(v any) any {
	switch list := v.(type) {
	case []any:
		if len(list) > 0 {
			return list[0]
		}
		return nil
	case []string:
		if len(list) > 0 {
			return list[0]
		}
		return nil
	}
	return v
}
