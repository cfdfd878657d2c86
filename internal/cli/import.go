package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/truthdare/truthdare-api/internal/config"
	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/model"
	"github.com/truthdare/truthdare-api/internal/source"
)

var importKindFlag string

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Seed the SQL database from the JSON files",
		Long: "Validates the truths and dares JSON files (--truths/--dares or TRUTHS_FILE/DARES_FILE) " +
			"and replaces the matching tables of the sqlite or postgres database (--source, --dsn). " +
			"Nothing is written for a kind whose file fails validation.",
		Run: runImport,
	}
	cmd.Flags().StringVar(&importKindFlag, "kind", "", "Import only this kind (truth or dare)")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	if cfg.Source != config.SourceSQLite && cfg.Source != config.SourcePostgres {
		exitErr("import", fmt.Errorf("source must be sqlite or postgres, got %q", cfg.Source))
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	kinds := model.Kinds
	if importKindFlag != "" {
		kind, err := model.ParseKind(importKindFlag)
		if err != nil {
			exitErr("import", err)
		}
		kinds = []model.Kind{kind}
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		exitErr("open database", err)
	}
	defer db.Close()

	loader := content.NewLoader(source.NewFileSource(cfg.TruthsFile, cfg.DaresFile), cfg.LoadTimeout)
	imported := make(map[string]int, len(kinds))
	for _, kind := range kinds {
		// The snapshot is only used as a validator; the original order is kept.
		snap, err := loader.Load(ctx, kind)
		if err != nil {
			db.Close()
			exitErr("validate "+kind.Plural(), err)
		}

		n, err := db.Import(ctx, kind, snap.Items())
		if err != nil {
			db.Close()
			exitErr("import "+kind.Plural(), err)
		}
		imported[kind.Plural()] = n
	}

	if err := writeJSONTo(cmd.OutOrStdout(), map[string]any{"ok": true, "imported": imported}); err != nil {
		exitErr("write result", err)
	}
}
