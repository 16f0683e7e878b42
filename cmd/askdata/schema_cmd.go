package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/output"
	"github.com/vegasq/askdata/reader"
)

func newSchemaCmd(opts *options) *cobra.Command {
	var physical bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the inferred schema of the data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if physical {
				return printPhysicalSchema(cmd, opts)
			}
			data, err := opts.load(cmd)
			if err != nil {
				return err
			}

			rows := make([]dataset.Row, 0, data.Schema.Len())
			for _, c := range data.Schema.Columns() {
				rows = append(rows, dataset.Row{
					"column":   c.Name,
					"type":     c.Type.String(),
					"nullable": c.Nullable,
					"unique":   c.Cardinality,
				})
			}
			return formatTable(cmd, opts, dataset.NewTable([]string{"column", "type", "nullable", "unique"}, rows))
		},
	}
	cmd.Flags().BoolVar(&physical, "physical", false, "show Parquet physical and logical types instead")
	return cmd
}

// printPhysicalSchema shows the parquet schema of the first file matching
// the data path.
func printPhysicalSchema(cmd *cobra.Command, opts *options) error {
	if opts.dataPath == "" {
		return errors.New("--physical needs --data-path")
	}
	paths := []string{opts.dataPath}
	if reader.IsGlob(opts.dataPath) {
		matches, err := filepath.Glob(opts.dataPath)
		if err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
		if len(matches) == 0 {
			return fmt.Errorf("%w: no files match pattern %s", reader.ErrNotFound, opts.dataPath)
		}
		paths = matches
		if len(matches) > 1 {
			fmt.Fprintf(cmd.ErrOrStderr(), "# Showing schema from: %s (%d files matched)\n", matches[0], len(matches))
		}
	}

	infos, err := reader.ExtractSchemaInfo(paths[0])
	if err != nil {
		return err
	}
	rows := make([]dataset.Row, len(infos))
	for i, info := range infos {
		rows[i] = dataset.Row{
			"name":          info.Name,
			"physical_type": info.PhysicalType,
			"logical_type":  info.LogicalType,
			"optional":      info.Optional,
			"repeated":      info.Repeated,
		}
	}
	return formatTable(cmd, opts, dataset.NewTable(
		[]string{"name", "physical_type", "logical_type", "optional", "repeated"}, rows))
}

func formatTable(cmd *cobra.Command, opts *options, t *dataset.Table) error {
	f, err := output.New(opts.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if tf, ok := f.(*output.TableFormatter); ok {
		tf.SetMaxRows(0)
	}
	return f.Format(t)
}
