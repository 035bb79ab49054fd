package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/telemetry"
	"github.com/vango-dev/vdiff/pkg/treeio"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

func diffCmd() *cobra.Command {
	var (
		skipPath string
		env      string
		format   string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Print the patch script that turns OLD into NEW",
		Long: `Print the patch script that turns the OLD tree into the NEW tree.

Patch paths address the OLD tree. Trees are read from .json, .yaml or
.html files. A skip tree marks subtrees that are known not to have
changed; slot decisions are resolved against --env.

Formats:
  text     one patch per line (default)
  json     patch documents
  yaml     patch documents
  binary   a Patches frame in the websocket wire format

Examples:
  vdiff diff before.html after.html
  vdiff diff old.json new.json --format json --out patches.json
  vdiff diff old.yaml new.yaml --skip skip.json --env 1,0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := treeio.Load(args[0])
			if err != nil {
				return err
			}
			next, err := treeio.Load(args[1])
			if err != nil {
				return err
			}

			differ := telemetry.NewDiffer()
			var patches []vdom.Patch
			if skipPath != "" {
				skip, err := treeio.LoadSkip(skipPath)
				if err != nil {
					return err
				}
				flags, err := parseEnv(env)
				if err != nil {
					return err
				}
				patches = differ.DiffWithSkip(cmd.Context(), prev, next, skip, flags)
			} else {
				patches = differ.Diff(cmd.Context(), prev, next)
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return errors.Newf(errors.CategoryCLI, "cannot create %s", out).Wrap(err)
				}
				defer f.Close()
				w = f
			}
			return writePatches(w, patches, format)
		},
	}

	cmd.Flags().StringVar(&skipPath, "skip", "", "Skip tree file")
	cmd.Flags().StringVar(&env, "env", "", "Comma-separated slot values for the skip tree, e.g. 1,0,true")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, yaml or binary")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")

	return cmd
}

// parseEnv parses a comma-separated list of booleans into slot flags.
func parseEnv(s string) (vdom.Flags, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	flags := make(vdom.Flags, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseBool(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Newf(errors.CategoryCLI, "invalid --env value %q at slot %d", p, i).
				WithSuggestion("Use 1, 0, true or false")
		}
		flags[i] = v
	}
	return flags, nil
}

func writePatches(w io.Writer, patches []vdom.Patch, format string) error {
	switch format {
	case "text", "":
		printPatches(w, patches)
		return nil
	case "binary":
		frame := protocol.NewFrame(protocol.FramePatches, protocol.EncodePatches(&protocol.PatchesFrame{Patches: patches}))
		return protocol.WriteFrame(w, frame)
	default:
		f, err := treeio.ParseFormat(format)
		if err != nil || f == treeio.FormatHTML {
			return errors.Newf(errors.CategoryCLI, "unknown output format %q", format).
				WithSuggestion("Use text, json, yaml or binary")
		}
		return treeio.EncodePatches(w, patches, f)
	}
}

// printPatches lists patches one per line with the operation colored by
// kind.
func printPatches(w io.Writer, patches []vdom.Patch) {
	st := newStyles(w)
	if len(patches) == 0 {
		fmt.Fprintln(w, st.dim.Render("no changes"))
		return
	}
	for _, p := range patches {
		op := p.Op.String()
		rest := strings.TrimPrefix(p.String(), op+" ")
		fmt.Fprintf(w, "%s %s\n", st.op(p.Op).Render(fmt.Sprintf("%-16s", op)), rest)
	}
	fmt.Fprintln(w, st.dim.Render(plural(len(patches), "patch", "patches")))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
