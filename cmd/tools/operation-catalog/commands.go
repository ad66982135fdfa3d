package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"infomaniak-workers/internal/workers/infomaniak/nodes"
	"infomaniak-workers/pkg/registry"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "operation-catalog",
		Short:         "Inspect and generate Infomaniak operation tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(exportCmd(), lintCmd(), importCmd(), generateCmd())
	return root
}

func exportCmd() *cobra.Command {
	var out, node string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the compiled operation tables as a JSON catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := &registry.Catalog{Version: registry.CatalogVersion}
			for _, spec := range nodes.All() {
				if node != "" && spec.Name != node {
					continue
				}
				reg, err := spec.NewRegistry()
				if err != nil {
					return err
				}
				cat.Nodes = append(cat.Nodes, registry.FromRegistry(spec.TaskType, reg))
			}
			if len(cat.Nodes) == 0 {
				return fmt.Errorf("unknown node %q", node)
			}

			if out == "" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cat)
			}
			if err := registry.SaveCatalog(out, cat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d node(s) to %s\n", len(cat.Nodes), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&node, "node", "", "export a single node")
	return cmd
}

func lintCmd() *cobra.Command {
	var catalogPath string
	var strict bool

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check operation tables for structural errors and duplicate labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			type target struct {
				name    string
				compile func() ([]string, error)
			}
			var targets []target

			if catalogPath != "" {
				cat, err := registry.LoadCatalog(catalogPath)
				if err != nil {
					return err
				}
				for i := range cat.Nodes {
					n := &cat.Nodes[i]
					targets = append(targets, target{n.Name, func() ([]string, error) {
						reg, err := n.Compile()
						if err != nil {
							return nil, err
						}
						return reg.Warnings(), nil
					}})
				}
			} else {
				for _, spec := range nodes.All() {
					targets = append(targets, target{spec.Name, func() ([]string, error) {
						reg, err := spec.NewRegistry()
						if err != nil {
							return nil, err
						}
						return reg.Warnings(), nil
					}})
				}
			}

			var failed, warned int
			for _, t := range targets {
				warnings, err := t.compile()
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "ERROR %s: %v\n", t.name, err)
					continue
				}
				for _, w := range warnings {
					warned++
					fmt.Fprintf(cmd.OutOrStdout(), "WARN  %s\n", w)
				}
			}

			switch {
			case failed > 0:
				return fmt.Errorf("%d node(s) failed to compile", failed)
			case strict && warned > 0:
				return fmt.Errorf("%d warning(s) in strict mode", warned)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d node(s), %d warning(s)\n", len(targets), warned)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "lint a catalog file instead of the built-in tables")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func importCmd() *cobra.Command {
	var specPath, node, taskType, out string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build a catalog node from an OpenAPI 3 document",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(specPath)
			if err != nil {
				return fmt.Errorf("reading spec file: %w", err)
			}
			if taskType == "" {
				taskType = "infomaniak." + node
			}

			imported, err := registry.ImportOpenAPI(data, node, taskType)
			if err != nil {
				return err
			}
			reg, err := imported.Compile()
			if err != nil {
				return err
			}
			imported.Warnings = reg.Warnings()

			cat := &registry.Catalog{}
			if existing, err := registry.LoadCatalog(out); err == nil {
				cat = existing
			}
			if n, ok := cat.Node(node); ok {
				*n = *imported
			} else {
				cat.Nodes = append(cat.Nodes, *imported)
			}

			if err := registry.SaveCatalog(out, cat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d operation(s) into node %s (%s)\n", reg.Len(), node, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "OpenAPI document (YAML or JSON)")
	cmd.Flags().StringVar(&node, "node", "", "node name")
	cmd.Flags().StringVar(&taskType, "task-type", "", "task type (default infomaniak.<node>)")
	cmd.Flags().StringVarP(&out, "out", "o", "catalog.json", "catalog file to create or update")
	_ = cmd.MarkFlagRequired("spec")
	_ = cmd.MarkFlagRequired("node")
	return cmd
}
