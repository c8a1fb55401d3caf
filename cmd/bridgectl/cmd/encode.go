package cmd

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/nativebridge/pkg/core"
	"github.com/go-drift/nativebridge/pkg/types"
	"github.com/go-drift/nativebridge/pkg/wire"
)

func init() {
	RegisterCommand(&Command{
		Name:  "encode",
		Short: "Encode a value with a property type",
		Long: `Validate and encode a value the way a property setter would, and print
the wire form as JSON.

The value is parsed as YAML, so numbers, booleans, lists and maps can be
written inline. Quote strings that would otherwise parse as another type.
Extra arguments are passed to the type: the accepted values of "choice",
the inner type of "nullable" and the item type of "array".

Examples:
  bridgectl encode ColorValue '#f00'
  bridgectl encode choice flat default flat outline
  bridgectl encode transform '{rotation: 1.5}'`,
		Usage: "bridgectl encode <type> <value> [type-args...]",
		Run:   runEncode,
	})
}

func runEncode(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("type and value are required\n\nUsage: bridgectl encode <type> <value> [type-args...]")
	}
	value, err := parseValue(args[1])
	if err != nil {
		return err
	}

	rt := core.NewRuntime()
	encoded, err := rt.Types().Encode(typeRef(args[0], args[2:]), value)
	if err != nil {
		return err
	}
	normalized, err := wire.Normalize(encoded)
	if err != nil {
		return err
	}
	if wire.IsUndefined(normalized) {
		fmt.Fprintln(stdout, "undefined")
		return nil
	}
	data, err := wire.JSONCodec{}.Encode(normalized)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

func typeRef(name string, extra []string) types.TypeRef {
	switch {
	case len(extra) == 0:
		return types.T(name)
	case name == "choice":
		return types.T(name, extra)
	default:
		args := make([]any, len(extra))
		for i, a := range extra {
			args[i] = a
		}
		return types.T(name, args...)
	}
}

// parseValue reads a YAML scalar or document. Maps decode with string keys
// so they are valid wire objects.
func parseValue(src string) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(src), &node); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", src, err)
	}
	if len(node.Content) == 0 {
		if strings.TrimSpace(src) == "" {
			return nil, nil
		}
		// Values such as "#f00" parse as a bare comment.
		return src, nil
	}
	var v any
	if err := node.Content[0].Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", src, err)
	}
	return v, nil
}
