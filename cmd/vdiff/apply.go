package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/livetree"
	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/render"
	"github.com/vango-dev/vdiff/pkg/telemetry"
	"github.com/vango-dev/vdiff/pkg/treeio"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

func applyCmd() *cobra.Command {
	var (
		patchesPath string
		pretty      bool
	)

	cmd := &cobra.Command{
		Use:   "apply OLD [NEW]",
		Short: "Apply a patch script to a live tree and print the result",
		Long: `Mount OLD as a live tree, apply a patch script to it and print the
resulting HTML.

The script is either read from --patches (json, yaml, or a binary frame
written by "vdiff diff --format binary") or computed by diffing OLD
against NEW. When NEW is given the result must equal it.

Examples:
  vdiff apply old.html new.html
  vdiff apply old.json --patches patches.json --pretty`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := treeio.Load(args[0])
			if err != nil {
				return err
			}
			var next *vdom.Node
			if len(args) == 2 {
				if next, err = treeio.Load(args[1]); err != nil {
					return err
				}
			}

			differ := telemetry.NewDiffer()
			var patches []vdom.Patch
			switch {
			case patchesPath != "":
				if patches, err = loadPatches(patchesPath); err != nil {
					return err
				}
			case next != nil:
				patches = differ.Diff(cmd.Context(), prev, next)
			default:
				return errors.Newf(errors.CategoryCLI, "nothing to apply").
					WithSuggestion("Pass a NEW tree or --patches FILE")
			}

			live := livetree.Mount(prev)
			if err := differ.Apply(cmd.Context(), live, patches); err != nil {
				return err
			}
			result := live.Snapshot()

			status := cmd.ErrOrStderr()
			if next != nil {
				if !vdom.Equal(result, next) {
					return errors.Newf(errors.CategoryCLI, "applied tree differs from %s", args[1]).
						WithDetailf("%s produced a different tree", plural(len(patches), "patch", "patches"))
				}
				success(status, "%s applied, result matches %s", plural(len(patches), "patch", "patches"), args[1])
			} else {
				success(status, "%s applied", plural(len(patches), "patch", "patches"))
			}

			html, err := render.NewRenderer(render.RendererConfig{Pretty: pretty}).RenderToString(result)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), html)
			if !pretty {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&patchesPath, "patches", "p", "", "Patch script file (.json, .yaml or .bin)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the HTML output")

	return cmd
}

// loadPatches reads a patch script document or binary Patches frame.
func loadPatches(path string) ([]vdom.Patch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.CodeUnreadableInput).Wrap(err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".bin") {
		frame, err := protocol.ReadFrame(f)
		if err != nil {
			return nil, errors.New(errors.CodeMalformedPayload).WithDetail(path).Wrap(err)
		}
		if frame.Type != protocol.FramePatches {
			return nil, errors.New(errors.CodeUnsupportedFrame).
				WithDetailf("%s holds a %s frame, not Patches", path, frame.Type)
		}
		pf, err := protocol.DecodePatches(frame.Payload)
		if err != nil {
			return nil, errors.New(errors.CodeMalformedPayload).WithDetail(path).Wrap(err)
		}
		return pf.Patches, nil
	}

	format, err := treeio.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	return treeio.DecodePatches(f, format)
}
