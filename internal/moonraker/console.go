package moonraker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultErrorMacro is the dialog macro invoked for error-severity console
// messages. Printers without the macro still see the message in the console
// log; the RunGCode failure is logged and swallowed.
const DefaultErrorMacro = "_UBOE_ERROR_DIALOG"

// Console sends check messages to the printer console. It is a
// fire-and-forget sink: delivery failures are logged, never returned.
type Console struct {
	client     *Client
	errorMacro string
	mmuLog     bool
	log        *slog.Logger
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithErrorMacro overrides the dialog macro used for error messages.
func WithErrorMacro(name string) ConsoleOption {
	return func(c *Console) { c.errorMacro = name }
}

// WithMMULog routes all messages through MMU_LOG, which multi-material
// firmware surfaces in its own console pane.
func WithMMULog(enabled bool) ConsoleOption {
	return func(c *Console) { c.mmuLog = enabled }
}

// WithLogger overrides the fallback logger.
func WithLogger(log *slog.Logger) ConsoleOption {
	return func(c *Console) { c.log = log }
}

// NewConsole creates a console sink on top of a Moonraker client.
func NewConsole(client *Client, opts ...ConsoleOption) *Console {
	c := &Console{
		client:     client,
		errorMacro: DefaultErrorMacro,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Say delivers a message at the given severity ("error", "warning" or
// "info"). The reason is shown as the dialog title for error messages.
func (c *Console) Say(ctx context.Context, msg, severity, reason string) {
	// Klipper drops literal newlines from console messages.
	escaped := strings.ReplaceAll(msg, "\n", `\n`)

	var script string
	switch {
	case c.mmuLog && severity == "error":
		script = fmt.Sprintf("MMU_LOG MSG='%s' ERROR=1", escaped)
	case c.mmuLog:
		script = fmt.Sprintf("MMU_LOG MSG='%s'", escaped)
	case severity == "error":
		script = fmt.Sprintf("%s MSG=%q REASON=%q", c.errorMacro, escaped, reason)
	default:
		script = "M118 " + escaped
	}

	if err := c.client.RunGCode(ctx, script); err != nil {
		c.log.Error("console message delivery failed", "severity", severity, "error", err)
	}
}
