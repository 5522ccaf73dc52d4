// Package slogx is the ambient structured-logging setup: a log/slog logger
// wrapped in a small filtering handler that gates debug/info records by a
// "section" attribute while always letting warnings and above through.
package slogx

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// enabledSections lists the sections whose debug/info records are printed.
// "analysis" and "interp" cover the semantic analyzer and interpreter; add
// a section here to see its chatter.
var enabledSections = []string{}

var handlerOpts = &slog.HandlerOptions{
	Level: slog.LevelDebug,
	ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "time" {
			return slog.Attr{}
		}
		return a
	},
}

// Default is the package-wide logger. Analysis and interpretation log under
// the "section" attribute "analysis" or "interp".
var Default = slog.New(&filteringHandler{underlying: slog.NewTextHandler(os.Stderr, handlerOpts)})

// EnableSection turns on debug/info logging for the given section, e.g.
// slogx.EnableSection("interp") to see async spawn/join chatter.
func EnableSection(section string) {
	if !slices.Contains(enabledSections, section) {
		enabledSections = append(enabledSections, section)
	}
}

var _ slog.Handler = &filteringHandler{}

type filteringHandler struct {
	underlying slog.Handler
}

func (f *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.underlying.Enabled(ctx, level)
}

func (f *filteringHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelWarn {
		return f.underlying.Handle(ctx, record)
	}
	want := false
	record.Attrs(func(attr slog.Attr) bool {
		want = want || attr.Key == "section" && slices.ContainsFunc(enabledSections, func(section string) bool {
			return strings.HasPrefix(attr.Value.String(), section)
		})
		return !want
	})
	if !want {
		return nil
	}
	return f.underlying.Handle(ctx, record)
}

func (f *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filteringHandler{underlying: f.underlying.WithAttrs(attrs)}
}

func (f *filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{underlying: f.underlying.WithGroup(name)}
}
