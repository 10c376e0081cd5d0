package merge

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/agentstation/marcmerge/pkg/errors"
)

// Config file formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
)

// knownOptionKeys are the option names decoded into Options fields.
// Anything else lands in Options.Extra.
var knownOptionKeys = map[string]bool{
	"compareWithout":           true,
	"compareWithoutIndicators": true,
	"mustBeIdentical":          true,
	"combine":                  true,
	"transformOnInequality":    true,
	"pick":                     true,
	"pickMissing":              true,
	"skipOnMultiple":           true,
	"requireFieldInBoth":       true,
	"onlyIfMissing":            true,
	"comparator":               true,
}

// LoadConfig reads a merge configuration, choosing the format from the file
// extension. Unknown extensions are read as YAML, which also covers JSON.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	cfg, err := ParseConfig(data, FormatFromPath(path))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) && pe.File == "" {
			pe.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// FormatFromPath maps a file extension to a config format.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// ParseConfig decodes a configuration keeping the declared order of the
// fields and sort.indexes tables, then validates it.
func ParseConfig(data []byte, format string) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch strings.ToLower(format) {
	case FormatYAML, "yml", FormatJSON, "":
		cfg, err = parseOrdered(data, format)
	case FormatTOML:
		cfg, err = parseTOML(data)
	default:
		return nil, &errors.ValidationError{Field: "format", Value: format, Message: "unsupported config format"}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseOrdered handles YAML and JSON. Both go through the YAML parser with
// ordered maps so that rule order survives decoding.
func parseOrdered(data []byte, format string) (*Config, error) {
	if format == "" {
		format = FormatYAML
	}
	var doc any
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, errors.WrapParse(format, "", err)
	}
	if doc == nil {
		return &Config{}, nil
	}
	top, ok := doc.(yaml.MapSlice)
	if !ok {
		return nil, errors.NewParseError(format, "", "top level must be a mapping", nil)
	}

	src := sourceKeysOf(data)
	cfg := &Config{}
	for _, item := range top {
		key := fmt.Sprint(item.Key)
		switch key {
		case "sort":
			if err := decodeSort(cfg, item.Value, src.indexes); err != nil {
				return nil, err
			}
		case "fields":
			fields, ok := item.Value.(yaml.MapSlice)
			if !ok && item.Value != nil {
				return nil, &errors.ValidationError{Field: "fields", Message: "must be a mapping of tag patterns to rules"}
			}
			for i, f := range fields {
				pattern, err := patternKey(f.Key, at(src.fields, i, len(fields)))
				if err != nil {
					return nil, err
				}
				rule, err := buildRule(pattern, plain(f.Value))
				if err != nil {
					return nil, err
				}
				cfg.Fields = append(cfg.Fields, rule)
			}
		}
	}
	return cfg, nil
}

func decodeSort(cfg *Config, v any, keys []string) error {
	if v == nil {
		return nil
	}
	section, ok := v.(yaml.MapSlice)
	if !ok {
		return &errors.ValidationError{Field: "sort", Message: "must be a mapping"}
	}
	for _, item := range section {
		switch fmt.Sprint(item.Key) {
		case "insert":
			mode, ok := item.Value.(string)
			if !ok {
				return &errors.ValidationError{Field: "sort.insert", Value: item.Value, Message: "must be a string"}
			}
			cfg.Sort.Insert = InsertMode(mode)
		case "indexes":
			indexes, ok := item.Value.(yaml.MapSlice)
			if !ok && item.Value != nil {
				return &errors.ValidationError{Field: "sort.indexes", Message: "must be a mapping of tag patterns to ranks"}
			}
			for i, idx := range indexes {
				pattern, err := patternKey(idx.Key, at(keys, i, len(indexes)))
				if err != nil {
					return err
				}
				rank, err := toRank(pattern, idx.Value)
				if err != nil {
					return err
				}
				cfg.Sort.Indexes = append(cfg.Sort.Indexes, SortIndex{Pattern: pattern, Rank: rank})
			}
		}
	}
	return nil
}

type tomlConfig struct {
	Sort struct {
		Insert  string         `toml:"insert"`
		Indexes map[string]any `toml:"indexes"`
	} `toml:"sort"`
	Fields map[string]map[string]any `toml:"fields"`
}

// parseTOML decodes into maps and recovers declaration order from the
// metadata key list.
func parseTOML(data []byte) (*Config, error) {
	var raw tomlConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.WrapParse(FormatTOML, "", err)
	}

	cfg := &Config{Sort: SortConfig{Insert: InsertMode(raw.Sort.Insert)}}
	seenIdx := map[string]bool{}
	seenRule := map[string]bool{}
	for _, key := range meta.Keys() {
		switch {
		case len(key) == 3 && key[0] == "sort" && key[1] == "indexes":
			pattern := key[2]
			if seenIdx[pattern] {
				continue
			}
			seenIdx[pattern] = true
			rank, err := toRank(pattern, raw.Sort.Indexes[pattern])
			if err != nil {
				return nil, err
			}
			cfg.Sort.Indexes = append(cfg.Sort.Indexes, SortIndex{Pattern: pattern, Rank: rank})
		case len(key) >= 2 && key[0] == "fields":
			pattern := key[1]
			if seenRule[pattern] {
				continue
			}
			seenRule[pattern] = true
			rule, err := buildRule(pattern, raw.Fields[pattern])
			if err != nil {
				return nil, err
			}
			cfg.Fields = append(cfg.Fields, rule)
		}
	}
	return cfg, nil
}

// buildRule turns a decoded {action, options} body into a Rule.
func buildRule(pattern string, body any) (Rule, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return Rule{}, &errors.ValidationError{
			Field:   fmt.Sprintf("fields.%s", pattern),
			Message: "rule must be a mapping with an action",
		}
	}
	action, _ := m["action"].(string)
	rule := Rule{Pattern: pattern, Action: action}

	if raw, ok := m["options"]; ok && raw != nil {
		opts, ok := raw.(map[string]any)
		if !ok {
			return Rule{}, &errors.ValidationError{
				Field:   fmt.Sprintf("fields.%s.options", pattern),
				Message: "must be a mapping",
			}
		}
		decoded, err := decodeOptions(opts)
		if err != nil {
			return Rule{}, errors.WrapValidation(fmt.Sprintf("fields.%s.options", pattern), err)
		}
		rule.Options = decoded
	}
	return rule, nil
}

// decodeOptions round-trips a generic map through YAML so the typed fields
// and the PickOptions shorthand decode the same way for every format.
func decodeOptions(m map[string]any) (Options, error) {
	var opts Options
	data, err := yaml.Marshal(m)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if knownOptionKeys[k] {
			continue
		}
		if opts.Extra == nil {
			opts.Extra = make(map[string]any)
		}
		opts.Extra[k] = m[k]
	}
	return opts, nil
}

// sourceKeys holds mapping keys as written in the document, before YAML
// resolves them. An unquoted 020 decodes as the octal integer 16, so the
// decoded key cannot be trusted for tags.
type sourceKeys struct {
	fields  []string
	indexes []string
}

// sourceKeysOf reads the key tokens of the fields and sort.indexes mappings.
// It returns nothing when the document does not have the expected shape.
func sourceKeysOf(data []byte) sourceKeys {
	var src sourceKeys
	file, err := parser.ParseBytes(data, 0)
	if err != nil || len(file.Docs) == 0 {
		return src
	}
	for _, top := range mappingValues(file.Docs[0].Body) {
		switch keyText(top) {
		case "fields":
			src.fields = keyTexts(top.Value)
		case "sort":
			for _, item := range mappingValues(top.Value) {
				if keyText(item) == "indexes" {
					src.indexes = keyTexts(item.Value)
				}
			}
		}
	}
	return src
}

func mappingValues(n ast.Node) []*ast.MappingValueNode {
	switch m := n.(type) {
	case *ast.MappingNode:
		return m.Values
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{m}
	}
	return nil
}

func keyTexts(n ast.Node) []string {
	values := mappingValues(n)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = keyText(v)
	}
	return out
}

func keyText(v *ast.MappingValueNode) string {
	if v == nil || v.Key == nil {
		return ""
	}
	if tk := v.Key.GetToken(); tk != nil {
		return tk.Value
	}
	return ""
}

// at returns keys[i] when keys lines up with a decoded mapping of n entries.
func at(keys []string, i, n int) string {
	if len(keys) != n {
		return ""
	}
	return keys[i]
}

// patternKey converts a mapping key to a tag pattern, preferring the key as
// written. Without it, integer keys are padded to three digits.
func patternKey(k any, written string) (string, error) {
	if written != "" {
		return written, nil
	}
	switch v := k.(type) {
	case string:
		return v, nil
	case uint64:
		return fmt.Sprintf("%03d", v), nil
	case int64:
		return fmt.Sprintf("%03d", v), nil
	case int:
		return fmt.Sprintf("%03d", v), nil
	default:
		return "", &errors.ValidationError{Field: "pattern", Value: k, Message: "tag patterns must be strings"}
	}
}

func toRank(pattern string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			break
		}
		return float64(n), nil
	case int:
		return float64(n), nil
	}
	return 0, &errors.ValidationError{
		Field:   fmt.Sprintf("sort.indexes.%s", pattern),
		Value:   v,
		Message: "rank must be a number",
	}
}

// plain converts ordered YAML maps to plain maps, recursively.
func plain(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice:
		m := make(map[string]any, len(t))
		for _, item := range t {
			m[fmt.Sprint(item.Key)] = plain(item.Value)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = plain(val)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	default:
		return v
	}
}
