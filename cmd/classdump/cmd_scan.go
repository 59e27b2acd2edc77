package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classdump/archive"
	"github.com/dhamidi/classdump/classfile"
	"github.com/dhamidi/classdump/dump"
)

func newScanCmd() *cobra.Command {
	var strict bool
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "scan <archive>",
		Short: "Decode every .class entry in a ZIP-based archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			result, err := archive.Walk(path, classfile.ParseOptions{Strict: strict})
			if err != nil {
				return fmt.Errorf("scan %s: %w", path, err)
			}

			for _, e := range result.Entries {
				switch outputFormat {
				case "json":
					fmt.Printf("%s:\n", e.Name)
					enc := dump.NewEncoder(os.Stdout)
					if err := enc.Encode(e.Class); err != nil {
						return fmt.Errorf("encode %s: %w", e.Name, err)
					}
					fmt.Println()
				default:
					fmt.Printf("%s -> %s\n", e.Name, e.Class.ClassName())
				}
			}

			for _, f := range result.Failures {
				fmt.Fprintf(os.Stderr, "%s\n", f.Error())
			}

			fmt.Printf("\ndecoded %d, failed %d\n", len(result.Entries), len(result.Failures))
			if len(result.Failures) > 0 {
				return fmt.Errorf("%d of %d entries failed to decode", len(result.Failures), len(result.Entries)+len(result.Failures))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "validate pool indices eagerly and require exact EOF per entry")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "line", "output format (line, json)")

	return cmd
}
