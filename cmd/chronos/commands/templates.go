package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/chronos/internal/engine"
	"github.com/wonny/chronos/internal/template"
)

// templatesCmd represents the templates command
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List templates from the candidate engine",
	Long: `Lists templates of a given kind and decodes strategy configs.

Example:
  go run ./cmd/chronos templates
  go run ./cmd/chronos templates --kind trade`,
	RunE: listTemplates,
}

var templatesKind string

func init() {
	rootCmd.AddCommand(templatesCmd)

	// Flags
	templatesCmd.Flags().StringVar(&templatesKind, "kind", "strategy", "template kind (strategy|trade|risk)")
}

func listTemplates(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := commandContext()
	defer cancel()

	templates, err := rt.engine.ListTemplates(ctx, engine.TemplateKind(templatesKind))
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	if len(templates) == 0 {
		fmt.Printf("No %s templates\n", templatesKind)
		return nil
	}

	fmt.Printf("Templates (%s):\n", templatesKind)
	for _, t := range templates {
		fmt.Printf("  %4d  %-30s v%d\n", t.ID, t.Name, t.Version)

		cfg := template.Decode(t.ConfigJSON)
		if cfg == nil {
			fmt.Println("        config: invalid")
			continue
		}
		for _, rule := range cfg.EntryRules {
			fmt.Printf("        %s %s %v\n", rule.Field, rule.Op, rule.Value)
		}
		if cfg.ScoreField != nil {
			fmt.Printf("        score: %s\n", *cfg.ScoreField)
		}
	}
	return nil
}
