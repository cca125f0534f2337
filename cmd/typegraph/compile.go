package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/reoring/typegraph/document"
	"github.com/reoring/typegraph/loader"
)

type compileOptions struct {
	output   string
	format   string
	indent   string
	name     string
	logLevel string
	strict   bool
}

func newCompileCommand() *cobra.Command {
	o := &compileOptions{}
	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a YAML declaration into a typegraph document",
		Example: `  typegraph compile graph.yaml
  typegraph compile graph.yaml --format yaml -o graph.out.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, o, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "write the document to this file instead of stdout")
	f.StringVar(&o.format, "format", "json", "output format: json or yaml")
	f.StringVar(&o.indent, "indent", "  ", "JSON indentation; empty for compact output")
	f.StringVar(&o.name, "name", "", "override the typegraph name declared in the file")
	f.BoolVar(&o.strict, "require-functions", false, "fail when an exposed name is not a function")
	f.StringVar(&o.logLevel, "log-level", "warn", "log level: trace, debug, info, warn or error")
	return cmd
}

func runCompile(cmd *cobra.Command, o *compileOptions, path string) error {
	if o.format != "json" && o.format != "yaml" {
		return fmt.Errorf("unknown format %q", o.format)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "typegraph",
		Level:  hclog.LevelFromString(o.logLevel),
		Output: cmd.ErrOrStderr(),
	})

	g, diag, err := loader.LoadFile(path, loader.Options{Logger: logger, Name: o.name, RequireFunctions: o.strict})
	printWarnings(cmd.ErrOrStderr(), diag)
	if err != nil {
		return err
	}
	doc, err := g.Build()
	if err != nil {
		return err
	}

	if o.output == "" {
		return encode(cmd.OutOrStdout(), o, doc)
	}
	f, err := os.Create(o.output)
	if err != nil {
		return err
	}
	return encodeAndClose(f, o, doc)
}

// encodeAndClose reports the Close error too; a failed flush must fail the
// command.
func encodeAndClose(wc io.WriteCloser, o *compileOptions, doc *document.Document) error {
	if err := encode(wc, o, doc); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func encode(w io.Writer, o *compileOptions, doc *document.Document) error {
	if o.format == "yaml" {
		return document.EncodeYAML(w, doc)
	}
	return document.EncodeJSON(w, doc, o.indent)
}

func printWarnings(w io.Writer, d loader.Diag) {
	if d == nil || !d.HasWarnings() {
		return
	}
	label := color.New(color.FgYellow).SprintFunc()
	for _, msg := range d.Warnings() {
		fmt.Fprintf(w, "%s %s\n", label("warning:"), msg)
	}
}
