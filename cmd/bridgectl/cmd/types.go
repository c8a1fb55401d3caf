package cmd

import (
	"fmt"

	"github.com/go-drift/nativebridge/pkg/core"
)

func init() {
	RegisterCommand(&Command{
		Name:  "types",
		Short: "List registered property types",
		Long: `List the names of all property types known to the bridge.

These names can be passed to "bridgectl encode".`,
		Usage: "bridgectl types",
		Run:   runTypes,
	})
}

func runTypes(args []string) error {
	rt := core.NewRuntime()
	for _, name := range rt.Types().Names() {
		fmt.Fprintln(stdout, name)
	}
	return nil
}
