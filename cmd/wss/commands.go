package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wss/cascade"
	"wss/config"
	"wss/css"
	"wss/state"
	"wss/widget"
)

func checkStylesheets(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("check")

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		paths = []string{""}
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.EqualFold(filepath.Ext(path), ".zip") {
			sheets, er := env.LoadBundle(path)
			err = multierr.Append(err, er)
			for _, c := range sheets {
				log.Info("Stylesheet checked", zap.String("bundle", path), zap.String("file", c.Name), zap.Int("rules", c.Rules.Len()), zap.Strings("subcontrols", c.Rules.Subcontrols()))
			}
			continue
		}
		rs, er := env.LoadRuleSet(path)
		err = multierr.Append(err, er)
		if rs != nil {
			log.Info("Stylesheet checked", zap.String("file", path), zap.Int("rules", rs.Len()), zap.Strings("subcontrols", rs.Subcontrols()))
		}
	}
	return err
}

func dumpRules(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	format, err := outputFormat(cmd, env.Cfg)
	if err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	rs, err := env.LoadRuleSet(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	data, err := renderRuleSet(rs, format)
	if err != nil {
		return fmt.Errorf("unable to dump rule set: %w", err)
	}
	return writeOutput(cmd.Args().Get(1), data)
}

func resolveStyles(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("resolve")

	format, err := outputFormat(cmd, env.Cfg)
	if err != nil {
		return err
	}

	treePath := cmd.Args().Get(0)
	if len(treePath) == 0 {
		return errors.New("no widget tree has been specified")
	}
	if cmd.Args().Len() > 3 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[3:]))
	}

	tree, err := env.LoadTree(treePath)
	if err != nil {
		return err
	}
	rs, err := env.LoadRuleSet(cmd.Args().Get(1))
	if err != nil {
		return err
	}

	opts := []cascade.Option{cascade.WithLogger(env.Log)}
	if cmd.Bool("no-cache") || !env.Cfg.Engine.Cache {
		opts = append(opts, cascade.WithoutCache())
	}
	engine := cascade.New(rs, opts...)

	nodes := tree.Nodes
	if ids := cmd.StringSlice("widget"); len(ids) > 0 {
		nodes = make([]*widget.Node, 0, len(ids))
		for _, id := range ids {
			n := tree.Find(widget.ID(id))
			if n == nil {
				return fmt.Errorf("widget %q not found in %s", id, treePath)
			}
			nodes = append(nodes, n)
		}
	}

	styles := make([]resolved, 0, len(nodes))
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		styles = append(styles, resolved{node: n, parts: engine.ResolveParts(n)})
	}

	data, err := renderStyles(styles, format)
	if err != nil {
		return fmt.Errorf("unable to output styles: %w", err)
	}

	stats := engine.Stats()
	fields := []zap.Field{
		zap.Int("widgets", len(nodes)),
		zap.Uint64("hits", stats.Hits),
		zap.Uint64("misses", stats.Misses),
		zap.Uint64("uncached", stats.Uncached),
		zap.Int("entries", stats.Entries),
	}
	if cmd.Bool("stats") {
		log.Info("Styles resolved", fields...)
	} else {
		log.Debug("Styles resolved", fields...)
	}
	return writeOutput(cmd.Args().Get(2), data)
}

func formatStylesheet(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("format")

	path, err := env.StylesheetPath(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet: %w", err)
	}

	sheet, err := css.NewParser(env.Log).Parse(data, path)
	for _, e := range multierr.Errors(err) {
		log.Warn("Declaration dropped", zap.String("file", path), zap.Error(e))
	}
	for _, w := range sheet.Warnings {
		log.Warn("Stylesheet warning", zap.String("file", path), zap.String("warning", w))
	}

	var buf bytes.Buffer
	if _, err := sheet.WriteTo(&buf); err != nil {
		return fmt.Errorf("unable to format stylesheet: %w", err)
	}
	return writeOutput(cmd.Args().Get(1), buf.Bytes())
}

func outputFormat(cmd *cli.Command, cfg *config.Config) (config.OutputFmt, error) {
	if name := cmd.String("output"); len(name) > 0 {
		format, err := config.ParseOutputFmt(name)
		if err != nil {
			return format, fmt.Errorf("unsupported output format: %w", err)
		}
		return format, nil
	}
	return cfg.Output, nil
}
