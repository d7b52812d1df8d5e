package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/seamorm/seam/internal/cli/config"
	"github.com/seamorm/seam/manytomany"
	"github.com/seamorm/seam/schemafile"
)

var inspectSchemaFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Resolve and print many-to-many metadata from a schema file",
	Long: `Load schema definitions from a YAML file, resolve every declared
many-to-many relation, and print the inferred join metadata: the join
class, the local and foreign join columns, and the foreign class.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectSchemaFile, "schema", "f", "", "schema definitions file (defaults to configured schema_file)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	path := inspectSchemaFile
	if path == "" {
		path = cfg.SchemaFile
	}

	registry, resolver, err := schemafile.Load(path, logger)
	if err != nil {
		return err
	}

	className := color.New(color.FgCyan, color.Bold).SprintFunc()
	relName := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	names := registry.List()
	sort.Strings(names)

	for _, name := range names {
		class, _ := registry.Get(name)
		regs := resolver.Registrations(class)
		if len(regs) == 0 {
			continue
		}

		fmt.Fprintf(os.Stdout, "%s\n", className(class.Name))

		relations := make([]string, 0, len(regs))
		for rel := range regs {
			relations = append(relations, rel)
		}
		sort.Strings(relations)

		for _, relation := range relations {
			desc, err := resolver.Describe(class, relation)
			if err != nil {
				return err
			}

			meta, _ := desc.Meta(manytomany.MetaKey)
			res, _ := meta.(*manytomany.Resolved)
			if res == nil {
				continue
			}

			fmt.Fprintf(os.Stdout, "  %s (via %s)\n", relName(res.MethodName), relation)
			if !res.Complete() {
				fmt.Fprintf(os.Stdout, "    %s\n", warn("unresolved: join class relationships could not be classified"))
				continue
			}
			fmt.Fprintf(os.Stdout, "    join class:     %s (%s)\n", res.MapClass.Name, res.MapClass.Table)
			fmt.Fprintf(os.Stdout, "    local column:   %s\n", res.MapFrom)
			fmt.Fprintf(os.Stdout, "    foreign column: %s\n", res.MapTo)
			fmt.Fprintf(os.Stdout, "    foreign class:  %s (%s)\n", res.ForeignClass.Name, res.ForeignClass.Table)
		}
	}

	return nil
}
