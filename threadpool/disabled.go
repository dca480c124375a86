package threadpool

import (
	"context"
	"log/slog"
)

// discardSlogHandler is the default logger target so that an unconfigured
// pool stays silent.
type discardSlogHandler struct{}

func (d discardSlogHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (d discardSlogHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (d discardSlogHandler) WithAttrs(_ []slog.Attr) slog.Handler          { return discardSlogHandler{} }
func (d discardSlogHandler) WithGroup(_ string) slog.Handler               { return discardSlogHandler{} }
