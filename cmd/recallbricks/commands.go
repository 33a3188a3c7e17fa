package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BaSui01/recallbricks"
	"github.com/BaSui01/recallbricks/types"
)

// =============================================================================
// 📝 写入
// =============================================================================

func (a *app) learnCmd() *cobra.Command {
	var opts recallbricks.LearnOptions
	cmd := &cobra.Command{
		Use:   "learn <text>",
		Short: "Store text and let the server extract metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, err := a.client.Learn(a.ctx(cmd), args[0], opts)
			if err != nil {
				return err
			}
			return a.print(cmd, mem, func(p *printer) {
				p.line("id: %s", mem.ID)
				p.line("category: %s", mem.Metadata.Category)
				p.line("tags: %v", mem.Metadata.Tags)
				p.line("importance: %.2f", mem.Metadata.Importance)
				if mem.Metadata.Summary != "" {
					p.line("summary: %s", mem.Metadata.Summary)
				}
			})
		},
	}
	cmd.Flags().StringVar(&opts.Source, "source", "", "memory source (default go-sdk)")
	cmd.Flags().StringVar(&opts.ProjectID, "project", "", "project id (default \"default\")")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "tag to attach (repeatable)")
	return cmd
}

func (a *app) saveCmd() *cobra.Command {
	var opts recallbricks.SaveOptions
	cmd := &cobra.Command{
		Use:   "save <text>",
		Short: "Store text as a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, err := a.client.Save(a.ctx(cmd), args[0], opts)
			if err != nil {
				return err
			}
			return a.print(cmd, mem, func(p *printer) { p.memory(*mem) })
		},
	}
	cmd.Flags().StringVar(&opts.Source, "source", "", "memory source (default api)")
	cmd.Flags().StringVar(&opts.ProjectID, "project", "", "project id (default \"default\")")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "tag to attach (repeatable)")
	return cmd
}

// =============================================================================
// 🔍 检索
// =============================================================================

func (a *app) recallCmd() *cobra.Command {
	var (
		opts        recallbricks.RecallOptions
		helpfulness float64
	)
	cmd := &cobra.Command{
		Use:   "recall <query>",
		Short: "Recall the memories most relevant to a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-helpfulness") {
				opts.MinHelpfulnessScore = types.Ptr(helpfulness)
			}
			res, err := a.client.Recall(a.ctx(cmd), args[0], opts)
			if err != nil {
				return err
			}
			return a.print(cmd, res, func(p *printer) {
				p.line("total: %d", res.Total)
				for _, m := range res.Memories {
					p.line("%s  %.2f  %s", m.ID, m.Score, m.Text)
				}
				for name, cat := range res.Categories {
					p.line("[%s] %d memories, avg %.2f: %s", name, cat.Count, cat.AvgScore, cat.Summary)
				}
			})
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results (1-100, default 10)")
	cmd.Flags().BoolVar(&opts.Organized, "organized", false, "group results into categories")
	cmd.Flags().Float64Var(&helpfulness, "min-helpfulness", 0, "minimum helpfulness score (0-1)")
	cmd.Flags().StringVar(&opts.ProjectID, "project", "", "project id")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var opts recallbricks.SearchOptions
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.client.Search(a.ctx(cmd), args[0], opts)
			if err != nil {
				return err
			}
			return a.print(cmd, results, func(p *printer) {
				for _, r := range results {
					p.line("%s  %.2f  %s  (relationships: %s)", r.ID, r.Score, r.Text, r.RelationshipStatus)
				}
			})
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results (1-100, default 10)")
	cmd.Flags().BoolVar(&opts.IncludeRelationships, "relationships", false, "fetch relationships for every result")
	cmd.Flags().StringVar(&opts.ProjectID, "project", "", "project id")
	return cmd
}

// =============================================================================
// CRUD
// =============================================================================

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <memory-id>",
		Short: "Show one memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mem, err := a.client.Get(a.ctx(cmd), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, mem, func(p *printer) { p.memory(*mem) })
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var opts recallbricks.GetAllOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored memories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mems, err := a.client.GetAll(a.ctx(cmd), opts)
			if err != nil {
				return err
			}
			return a.print(cmd, mems, func(p *printer) {
				for _, m := range mems {
					p.line("%s  %s", m.ID, m.Text)
				}
			})
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results")
	cmd.Flags().StringVar(&opts.ProjectID, "project", "", "project id")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var (
		text string
		tags []string
	)
	cmd := &cobra.Command{
		Use:   "update <memory-id>",
		Short: "Change the text or tags of a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts recallbricks.UpdateOptions
			if cmd.Flags().Changed("text") {
				opts.Text = types.Ptr(text)
			}
			if cmd.Flags().Changed("tag") {
				opts.Tags = tags
			}
			mem, err := a.client.Update(a.ctx(cmd), args[0], opts)
			if err != nil {
				return err
			}
			return a.print(cmd, mem, func(p *printer) { p.memory(*mem) })
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "new memory text")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replacement tag (repeatable)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <memory-id>",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Delete(a.ctx(cmd), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, res, func(p *printer) { p.line("deleted %s", args[0]) })
		},
	}
}

// =============================================================================
// 🕸️ 关系图
// =============================================================================

func (a *app) relationshipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relationships <memory-id>",
		Short: "Show the relationships of a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rels, err := a.client.GetRelationships(a.ctx(cmd), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(cmd, rels)
		},
	}
}

func (a *app) graphCmd() *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "graph <memory-id>",
		Short: "Show the relationship graph around a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.client.GetGraphContext(a.ctx(cmd), args[0], depth)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, graph)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 2, "traversal depth (0-50)")
	return cmd
}

// =============================================================================
// 🏥 状态
// =============================================================================

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.client.Health(a.ctx(cmd))
			if err != nil {
				return err
			}
			return a.print(cmd, h, func(p *printer) { p.line("status: %v", h["status"]) })
		},
	}
}

func (a *app) rateLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate-limit",
		Short: "Show the current quota window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rl, err := a.client.GetRateLimit(a.ctx(cmd))
			if err != nil {
				return err
			}
			return a.print(cmd, rl, func(p *printer) {
				p.line("%d/%d remaining (%.0f%% used), resets at %d", rl.Remaining, rl.Limit, rl.PercentUsed, rl.Reset)
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "recallbricks %s\n", recallbricks.Version)
			fmt.Fprintf(out, "  Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
		},
	}
}
