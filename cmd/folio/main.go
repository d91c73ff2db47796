// Command folio edits rich-text documents from the command line.
// It loads a document literal, runs Lua edit scripts against it and
// writes the result, optionally keeping the undo history in a file.
package main

import (
	"github.com/alecthomas/kong"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

// CLI defines the command-line interface for folio.
type CLI struct {
	// Global flags
	Config string `name:"config" short:"c" help:"Path to a TOML or YAML configuration file" type:"path"`

	Run     RunCmd     `cmd:"" help:"Run a Lua edit script against a document"`
	Query   QueryCmd   `cmd:"" help:"Print the value at a gjson path of a document"`
	Text    TextCmd    `cmd:"" help:"Print the plain text of a document"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("folio"),
		kong.Description("Folio - rich-text document engine"),
		kong.UsageOnError(),
		kong.Bind(&cli),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
