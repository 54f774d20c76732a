package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"coral/internal/compiler"
	"coral/internal/diag"
	"coral/internal/diagfmt"
	"coral/internal/observ"
	"coral/internal/pipeline"
	"coral/internal/snapshot"
	"coral/internal/types"
	"coral/internal/ui"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [snapshots...]",
	Short: "Lower program snapshots to WebAssembly modules",
	Long:  "Build compiles resolved program snapshots (.corb) into wasm text modules, one independent compiler per input.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	buildCmd.Flags().String("target", "", "pointer/memory model (wasm32|wasm64)")
	buildCmd.Flags().Bool("no-tree-shaking", false, "compile every declaration, not only reachable ones")
	buildCmd.Flags().Bool("no-assert", false, "replace assertions with no-ops")
	buildCmd.Flags().Bool("no-memory", false, "do not set up a memory section")
	buildCmd.Flags().Bool("import-memory", false, "import memory from env.memory")
	buildCmd.Flags().Uint32("memory-base", 0, "start offset for static memory")
	buildCmd.Flags().String("allocate-impl", "", "name of the allocator builtin")
	buildCmd.Flags().String("free-impl", "", "name of the free builtin")
	buildCmd.Flags().Bool("source-map", false, "record per-expression source ranges")
	buildCmd.Flags().StringP("output", "o", "", "output directory")
	buildCmd.Flags().String("ui", "auto", "progress ui (auto|on|off)")
}

type buildOutput struct {
	mu    sync.Mutex
	lines []string
}

func (o *buildOutput) add(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, line)
}

func buildExecution(cmd *cobra.Command, args []string) error {
	manifest, _, err := loadProjectManifest(".")
	if err != nil {
		return err
	}
	opts, err := manifestOptions(manifest)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, &opts); err != nil {
		return err
	}

	outputDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := parseUIMode(uiValue)
	if err != nil {
		return err
	}
	colorValue, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	colored := useColor(colorValue)
	output := &buildOutput{}

	build := func(ctx context.Context, file string, sink pipeline.ProgressSink) error {
		return buildOne(file, outputDir, opts, maxDiagnostics, timings, colored, sink, output)
	}

	var results []pipeline.Result
	if useProgressUI(mode, len(args)) {
		events := make(chan pipeline.Event, 64)
		model := ui.NewProgressModel("coral build", args, events)
		prog := tea.NewProgram(model)
		done := make(chan error, 1)
		go func() {
			var runErr error
			results, runErr = pipeline.Run(cmd.Context(), args, build, pipeline.ChannelSink{Ch: events})
			close(events)
			done <- runErr
		}()
		if _, uiErr := prog.Run(); uiErr != nil {
			return uiErr
		}
		err = <-done
	} else {
		results, err = pipeline.Run(cmd.Context(), args, build, pipeline.NopSink{})
	}

	if !quiet {
		for _, line := range output.lines {
			fmt.Fprint(cmd.OutOrStdout(), line)
		}
	}
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d builds failed", failed, len(results))
	}
	return err
}

// buildOne runs the whole pipeline for one snapshot: decode, compile with
// an independent compiler instance, render diagnostics, write the module.
func buildOne(file, outputDir string, opts compiler.Options, maxDiagnostics int, timings, colored bool, sink pipeline.ProgressSink, output *buildOutput) error {
	timer := observ.NewTimer()

	sink.OnEvent(pipeline.Event{File: file, Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})
	phase := timer.Begin("load")
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	prg, err := snapshot.Decode(f)
	closeErr := f.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}
	timer.End(phase, "")

	sink.OnEvent(pipeline.Event{File: file, Stage: pipeline.StageCompile, Status: pipeline.StatusWorking})
	phase = timer.Begin("compile")
	bag := diag.NewBag(maxDiagnostics)
	c := compiler.New(prg, opts, bag)
	module, err := c.Compile()
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	timer.End(phase, "")

	bag.Sort()
	bag.Dedup()
	if bag.Len() > 0 {
		var b strings.Builder
		diagfmt.Pretty(&b, bag, nil, diagfmt.PrettyOpts{Color: colored})
		output.add(b.String())
	}

	sink.OnEvent(pipeline.Event{File: file, Stage: pipeline.StageWrite, Status: pipeline.StatusWorking})
	phase = timer.Begin("write")
	outPath := outputName(file, outputDir)
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := module.WriteText(out); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	timer.End(phase, outPath)

	if timings {
		output.add(fmt.Sprintf("%s\n%s", file, timer.Summary()))
	}
	if bag.HasErrors() {
		return fmt.Errorf("%s: compilation produced errors", file)
	}
	return nil
}

// outputName derives the .wat path for an input snapshot.
func outputName(file, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".wat"
	if outputDir == "" {
		return filepath.Join(filepath.Dir(file), base)
	}
	return filepath.Join(outputDir, base)
}

func manifestOptions(m *projectManifest) (compiler.Options, error) {
	if m == nil {
		return compiler.Defaults(), nil
	}
	return m.options()
}

// applyFlagOverrides lets explicit CLI flags win over manifest values.
func applyFlagOverrides(cmd *cobra.Command, opts *compiler.Options) error {
	flags := cmd.Flags()
	if flags.Changed("target") {
		value, err := flags.GetString("target")
		if err != nil {
			return err
		}
		switch value {
		case "wasm32":
			opts.Target = types.WASM32
		case "wasm64":
			opts.Target = types.WASM64
		default:
			return fmt.Errorf("unknown target %q (want wasm32|wasm64)", value)
		}
	}
	for flag, dst := range map[string]*bool{
		"no-tree-shaking": &opts.NoTreeShaking,
		"no-assert":       &opts.NoAssert,
		"no-memory":       &opts.NoMemory,
		"import-memory":   &opts.ImportMemory,
		"source-map":      &opts.SourceMap,
	} {
		if flags.Changed(flag) {
			value, err := flags.GetBool(flag)
			if err != nil {
				return err
			}
			*dst = value
		}
	}
	if flags.Changed("memory-base") {
		value, err := flags.GetUint32("memory-base")
		if err != nil {
			return err
		}
		opts.MemoryBase = value
	}
	if flags.Changed("allocate-impl") {
		value, err := flags.GetString("allocate-impl")
		if err != nil {
			return err
		}
		opts.AllocateImpl = value
	}
	if flags.Changed("free-impl") {
		value, err := flags.GetString("free-impl")
		if err != nil {
			return err
		}
		opts.FreeImpl = value
	}
	return nil
}
