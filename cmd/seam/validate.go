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

var validateSchemaFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a schema file's many-to-many declarations",
	Long: `Load schema definitions from a YAML file and verify that every
declared many-to-many relation resolves to a complete join: a local
column, a foreign column, and a foreign class.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateSchemaFile, "schema", "f", "", "schema definitions file (defaults to configured schema_file)")
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	path := validateSchemaFile
	if path == "" {
		path = cfg.SchemaFile
	}

	registry, resolver, err := schemafile.Load(path, logger)
	if err != nil {
		return err
	}

	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	names := registry.List()
	sort.Strings(names)

	unresolved := 0
	total := 0
	for _, name := range names {
		class, _ := registry.Get(name)
		for relation := range resolver.Registrations(class) {
			total++
			desc, err := resolver.Describe(class, relation)
			if err != nil {
				return err
			}

			meta, _ := desc.Meta(manytomany.MetaKey)
			res, _ := meta.(*manytomany.Resolved)
			if res.Complete() {
				fmt.Fprintf(os.Stdout, "%s %s.%s\n", ok("ok"), class.Name, relation)
				continue
			}

			unresolved++
			fmt.Fprintf(os.Stdout, "%s %s.%s: join class relationships could not be classified\n",
				fail("unresolved"), class.Name, relation)
		}
	}

	if unresolved > 0 {
		return fmt.Errorf("%d of %d many-to-many relations unresolved", unresolved, total)
	}

	fmt.Fprintf(os.Stdout, "%d many-to-many relations resolved\n", total)
	return nil
}
