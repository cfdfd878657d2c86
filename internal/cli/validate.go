package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and check content without serving it",
		Long: "Loads every kind from the configured source with the same rules the server uses " +
			"and prints per-kind stats as JSON. Exits 1 if any kind fails to load.",
		Run: runValidate,
	}

	RootCmd.AddCommand(cmd)
}

type kindCheck struct {
	Kind   string         `json:"kind"`
	OK     bool           `json:"ok"`
	Total  int            `json:"total"`
	PerTag map[string]int `json:"per_tag,omitempty"`
	Reason string         `json:"reason,omitempty"`
	Record *int           `json:"record,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type validateResult struct {
	OK    bool        `json:"ok"`
	Kinds []kindCheck `json:"kinds"`
}

func runValidate(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		exitErr("open source", err)
	}
	res := validateKinds(ctx, content.NewLoader(src, cfg.LoadTimeout))
	closeSource()

	if err := writeJSONTo(cmd.OutOrStdout(), res); err != nil {
		exitErr("write result", err)
	}
	if !res.OK {
		os.Exit(1)
	}
}

// validateKinds loads every kind independently so one failure does not hide
// another.
func validateKinds(ctx context.Context, loader *content.Loader) validateResult {
	res := validateResult{OK: true}
	for _, kind := range model.Kinds {
		check := kindCheck{Kind: kind.Plural()}

		snap, err := loader.Load(ctx, kind)
		if err != nil {
			res.OK = false
			check.Error = err.Error()
			var le *content.LoadError
			if errors.As(err, &le) {
				check.Reason = string(le.Reason)
				if le.Record >= 0 {
					rec := le.Record
					check.Record = &rec
				}
			}
			res.Kinds = append(res.Kinds, check)
			continue
		}

		st := content.ComputeStats(snap)
		check.OK = true
		check.Total = st.Total
		check.PerTag = st.PerTag
		res.Kinds = append(res.Kinds, check)
	}
	return res
}

func writeJSONTo(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
