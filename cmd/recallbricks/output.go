package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BaSui01/recallbricks/types"
)

// printer 输出人类可读的结果
type printer struct {
	w io.Writer
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) memory(m types.Memory) {
	p.line("id: %s", m.ID)
	p.line("text: %s", m.Text)
	if len(m.Tags) > 0 {
		p.line("tags: %s", strings.Join(m.Tags, ", "))
	}
	if m.CreatedAt != "" {
		p.line("created: %s", m.CreatedAt)
	}
}

// print 在 --json 时输出完整响应，否则调用 text 输出摘要
func (a *app) print(cmd *cobra.Command, v any, text func(*printer)) error {
	if a.jsonOut {
		return a.printJSON(cmd, v)
	}
	text(&printer{w: cmd.OutOrStdout()})
	return nil
}

func (a *app) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
