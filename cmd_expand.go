package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vittorioromeo/scopex/buffer"
	"github.com/vittorioromeo/scopex/clipboardx"
	"github.com/vittorioromeo/scopex/scope"
)

var (
	expandFormat string
	expandPrint  bool
	expandCopy   bool
	expandStdin  bool
)

var expandCmd = &cobra.Command{
	Use:   "expand TARGET...",
	Short: "Print the scope enclosing each target selection",
	Long: `Resolves each TARGET to its innermost enclosing scope.

A TARGET is FILE:START:END with rune offsets, or FILE:LINE.COL-LINE.COL
with 1-based positions. With --stdin the text is read from standard input
and FILE is left out.

Example:
  scopex expand main.go:120:120 main.go:4.2-4.9
  echo 'a(bc)d' | scopex expand --stdin 2:4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().StringVarP(&expandFormat, "format", "f", "text", "output format: text, json or yaml")
	expandCmd.Flags().BoolVarP(&expandPrint, "print", "p", false, "include the scope text")
	expandCmd.Flags().BoolVarP(&expandCopy, "copy", "c", false, "copy the first scope to the clipboard")
	expandCmd.Flags().BoolVar(&expandStdin, "stdin", false, "read the text from standard input")
}

// result is the outcome for one target.
type result struct {
	Target string `json:"target" yaml:"target"`
	File   string `json:"file" yaml:"file"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Start  int    `json:"start" yaml:"start"`
	End    int    `json:"end" yaml:"end"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`

	err  error
	text string
}

func (r *result) fail(err error) {
	r.err = err
	r.Error = scope.Describe(err)
}

func runExpand(cmd *cobra.Command, args []string) error {
	if expandFormat != "text" && expandFormat != "json" && expandFormat != "yaml" {
		return fmt.Errorf("unknown format %q", expandFormat)
	}
	if logger == nil {
		var err error
		if logger, err = cfg.NewLogger(verbose, "stderr"); err != nil {
			return err
		}
	}

	targets := make([]target, 0, len(args))
	var parseErrs []error
	for _, a := range args {
		t, err := parseTarget(a, expandStdin)
		if err != nil {
			parseErrs = append(parseErrs, err)
			continue
		}
		targets = append(targets, t)
	}
	if err := errors.Join(parseErrs...); err != nil {
		return err
	}

	var stdinBuf *buffer.Buffer
	if expandStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		stdinBuf = buffer.NewBufferFromString(string(data))
	}
	load := func(file string) (*buffer.Buffer, error) {
		if file == stdinFile && stdinBuf != nil {
			return stdinBuf, nil
		}
		return buffer.NewBufferFromFile(file)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := expandTargets(ctx, targets, load)
	if err != nil {
		return err
	}

	if err := writeResults(cmd.OutOrStdout(), results, expandFormat, expandPrint); err != nil {
		return err
	}

	if expandCopy {
		copyFirst(cmd, results)
	}

	var failures []error
	for _, r := range results {
		if r.err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", r.Target, r.err))
		}
	}
	return errors.Join(failures...)
}

// expandTargets resolves every target concurrently. Each target loads its
// own snapshot, and results keep the order of targets.
func expandTargets(ctx context.Context, targets []target, load func(string) (*buffer.Buffer, error)) ([]result, error) {
	results := make([]result, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = expandTarget(t, load)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func expandTarget(t target, load func(string) (*buffer.Buffer, error)) result {
	res := result{Target: t.Raw, File: t.File}
	buf, err := load(t.File)
	if err != nil {
		res.fail(err)
		return res
	}
	sel, err := t.rangeIn(buf)
	if err != nil {
		res.fail(err)
		return res
	}
	res.Start, res.End = sel.Start, sel.End

	text := buf.Runes()
	s, err := scope.Expand(text, sel)
	if err != nil {
		res.fail(err)
		logger.Debug("expand failed", zap.String("target", t.Raw), zap.Error(err))
		return res
	}
	res.Kind = s.Kind.String()
	res.Start, res.End = s.Start, s.End
	res.text = string(text[s.Start:s.End])
	logger.Debug("expanded",
		zap.String("target", t.Raw),
		zap.String("kind", res.Kind),
		zap.Stringer("range", s.Range))
	return res
}

func writeResults(w io.Writer, results []result, format string, withText bool) error {
	if withText {
		for i := range results {
			results[i].Text = results[i].text
		}
	}
	if format != "text" {
		return encode(w, format, results)
	}

	for _, r := range results {
		if r.err != nil {
			if _, err := fmt.Fprintf(w, "%s: %s\n", r.Target, r.Error); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:%d-%d %s\n", r.File, r.Start, r.End, r.Kind); err != nil {
			return err
		}
		if withText {
			if _, err := fmt.Fprintln(w, r.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFirst(cmd *cobra.Command, results []result) {
	for _, r := range results {
		if r.err != nil || r.Kind == scope.KindNone.String() {
			continue
		}
		if !clipboardx.Write(r.text) {
			logger.Warn("clipboard unavailable")
			fmt.Fprintln(cmd.ErrOrStderr(), "clipboard unavailable")
		}
		return
	}
}
