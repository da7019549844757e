package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/littlesteps/internal/cli"
)

type DebugCmd struct {
	Profile *DebugProfileCmd `cmd:"" help:"Show the profile path and contents."`
	Dump    *DebugDumpCmd    `cmd:"" help:"Dump the server document as JSON."`
}

type DebugProfileCmd struct{}

func (cmd *DebugProfileCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"path":     ctx.ProfilePath,
		"server":   ctx.Profile.Server,
		"username": ctx.Profile.Username,
		"timezone": ctx.Profile.Timezone,
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	ctx.Println(string(jsonBytes))
	return nil
}

type DebugDumpCmd struct {
	Key string `arg:"" optional:"" help:"Only dump this top-level key (baby, milestones, chores, users)."`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	doc, err := ctx.Client().FetchState(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch state: %w", err)
	}

	var value any = doc
	if cmd.Key != "" {
		v, ok := doc[cmd.Key]
		if !ok {
			return fmt.Errorf("key %q not found in document", cmd.Key)
		}
		value = v
	}

	jsonBytes, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	ctx.Println(string(jsonBytes))
	return nil
}
