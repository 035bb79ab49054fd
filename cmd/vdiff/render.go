package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/pkg/render"
	"github.com/vango-dev/vdiff/pkg/treeio"
)

func renderCmd() *cobra.Command {
	var (
		pretty bool
		minify bool
		page   bool
		title  string
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a tree as HTML",
		Long: `Render a tree file as HTML.

Listeners and other diff-only attributes are not rendered.

Examples:
  vdiff render tree.yaml --pretty
  vdiff render tree.json --page --title Home
  vdiff render page.html --minify`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := treeio.Load(args[0])
			if err != nil {
				return err
			}

			r := render.NewRenderer(render.RendererConfig{Pretty: pretty && !minify})
			var b strings.Builder
			if page {
				err = r.RenderPage(&b, render.PageData{Body: tree, Title: title})
			} else {
				err = r.RenderToWriter(&b, tree)
			}
			if err != nil {
				return err
			}

			out := b.String()
			if minify {
				if out, err = render.Minify(out); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			if !strings.HasSuffix(out, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the output")
	cmd.Flags().BoolVar(&minify, "minify", false, "Minify the output")
	cmd.Flags().BoolVar(&page, "page", false, "Wrap the tree in a complete HTML document")
	cmd.Flags().StringVar(&title, "title", "", "Document title with --page")

	return cmd
}
