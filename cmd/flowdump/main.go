// Command flowdump paginates a Markdown or HTML document and dumps per-page
// layout statistics. It renders into the command recorder rather than a real
// backend, which makes it useful for inspecting how a story breaks across
// pages without producing output files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wudi/flowkit/config"
	"github.com/wudi/flowkit/fonts"
	"github.com/wudi/flowkit/htmldoc"
	"github.com/wudi/flowkit/layout"
	"github.com/wudi/flowkit/markdown"
	"github.com/wudi/flowkit/render"
	"github.com/wudi/flowkit/scripting"
)

type options struct {
	docPath    string
	configPath string
	hookPath   string
	fontPath   string
	commands   bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "flowdump: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "flowdump: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: go run ./cmd/flowdump [flags] <doc.md|doc.html>\n")
		flag.PrintDefaults()
	}
	configPath := flag.String("config", "", "TOML page template file (default: Letter with 72pt margins)")
	hookPath := flag.String("hook", "", "JavaScript file defining onPage(page, template)")
	fontPath := flag.String("font", "", "TrueType font to measure with (default: fixed-advance metrics)")
	commands := flag.Bool("commands", false, "Dump the recorded draw commands per page")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing document path")
	}
	opts.docPath = flag.Arg(0)
	opts.configPath = *configPath
	opts.hookPath = *hookPath
	opts.fontPath = *fontPath
	opts.commands = *commands
	return opts, nil
}

func run(opts options) error {
	metrics, err := loadMetrics(opts.fontPath)
	if err != nil {
		return err
	}

	story, err := loadStory(opts.docPath, metrics)
	if err != nil {
		return err
	}

	templates, err := loadTemplates(opts.configPath)
	if err != nil {
		return err
	}

	var docOpts []layout.Option
	if opts.hookPath != "" {
		script, err := os.ReadFile(opts.hookPath)
		if err != nil {
			return fmt.Errorf("read hook: %w", err)
		}
		hook, err := scripting.NewEngine().PageHook(context.Background(), string(script))
		if err != nil {
			return err
		}
		docOpts = append(docOpts, layout.WithPageHook(hook))
	}

	doc := layout.NewDocTemplate(templates, docOpts...)

	rec := render.NewRecorder()
	result, err := doc.Build(context.Background(), story, rec)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d pages in %s\n", filepath.Base(opts.docPath), result.Pages, result.BuildTime.Round(time.Microsecond))
	for _, ps := range result.PageStats {
		fmt.Printf("  page %d [%s]: %d items, %d commands, %s\n",
			ps.Page, ps.Template, ps.Items, ps.Commands, ps.RenderTime.Round(time.Microsecond))
	}
	if opts.commands {
		for i, page := range rec.Pages {
			fmt.Printf("page %d (%gx%g):\n", i+1, page.Width, page.Height)
			for _, cmd := range page.Commands {
				fmt.Printf("  %s %v %q\n", cmd.Op, cmd.Args, cmd.Str)
			}
		}
	}
	return nil
}

func loadMetrics(fontPath string) (fonts.Metrics, error) {
	if fontPath == "" {
		return fonts.Fixed{}, nil
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	shaper := fonts.NewShaper()
	for _, family := range []string{"Helvetica", "Courier"} {
		for _, weight := range []fonts.Weight{fonts.WeightRegular, fonts.WeightBold} {
			for _, style := range []fonts.Style{fonts.StyleNormal, fonts.StyleItalic} {
				if err := shaper.RegisterFace(family, weight, style, data); err != nil {
					return nil, err
				}
			}
		}
	}
	return shaper, nil
}

func loadStory(path string, metrics fonts.Metrics) ([]layout.Flowable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return htmldoc.New(metrics).Convert(f)
	default:
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return markdown.New(metrics).Convert(src)
	}
}

func loadTemplates(path string) ([]layout.PageTemplate, error) {
	if path == "" {
		doc := &config.Document{
			Templates: []config.Template{{Name: "body", Size: "letter"}},
		}
		return doc.PageTemplates()
	}
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return doc.PageTemplates()
}
