package milestone

import (
	"fmt"
	"strings"

	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/milestones"
	"github.com/julianstephens/littlesteps/internal/models"
)

func printMilestones(ctx *cli.Context, items []models.MilestoneItem, showIDs bool) {
	if len(items) == 0 {
		ctx.Println("No milestones found")
		return
	}
	for _, m := range items {
		idStr := ""
		if showIDs {
			idStr = cli.DimStyle.Render(fmt.Sprintf(" (ID: %s)", m.ID))
		}
		ctx.Printf("  %s %s%s - %d-%d mo (%s)\n",
			cli.LevelBadge(m.Level), m.Title, idStr, m.AgeStartMonths, m.AgeEndMonths, m.Category)
	}
}

type MilestoneListCmd struct {
	Category string `help:"Only show this category (motor, language, social, cognitive, custom)."`
	Level    string `help:"Only show this level (none, didIt, learning, mastered)."`
	ShowIDs  bool   `help:"Show milestone IDs." name:"show-ids"`
}

func (c *MilestoneListCmd) Run(ctx *cli.Context) error {
	app, err := ctx.Open()
	if err != nil {
		return err
	}

	var category models.MilestoneCategory
	if c.Category != "" {
		if category, err = models.ParseMilestoneCategory(c.Category); err != nil {
			return err
		}
	}
	var level models.MilestoneLevel
	if c.Level != "" {
		if level, err = models.ParseLevel(c.Level); err != nil {
			return err
		}
	}

	var items []models.MilestoneItem
	for _, m := range app.Milestones.Milestones.Get() {
		if category != "" && m.Category != category {
			continue
		}
		if level != "" && m.Level != level {
			continue
		}
		items = append(items, m)
	}

	ctx.Println("Milestones:")
	printMilestones(ctx, items, c.ShowIDs)
	return nil
}

type MilestoneUpcomingCmd struct {
	Limit   int  `help:"How many milestones to show." default:"10"`
	ShowIDs bool `help:"Show milestone IDs." name:"show-ids"`
}

func (c *MilestoneUpcomingCmd) Run(ctx *cli.Context) error {
	app, err := ctx.Open()
	if err != nil {
		return err
	}
	items, err := app.Milestones.Upcoming(c.Limit)
	if err != nil {
		return err
	}
	age, _ := app.Milestones.AgeInMonths()

	ctx.Printf("Up next for %s (%d months):\n", app.Milestones.Baby.Get().Name, age)
	printMilestones(ctx, items, c.ShowIDs)
	return nil
}

type MilestoneCompletedCmd struct {
	ShowIDs bool `help:"Show milestone IDs." name:"show-ids"`
}

func (c *MilestoneCompletedCmd) Run(ctx *cli.Context) error {
	app, err := ctx.Open()
	if err != nil {
		return err
	}
	ctx.Println("Mastered:")
	printMilestones(ctx, app.Milestones.Completed(), c.ShowIDs)
	return nil
}

type MilestoneArchiveCmd struct {
	ShowIDs bool `help:"Show milestone IDs." name:"show-ids"`
}

func (c *MilestoneArchiveCmd) Run(ctx *cli.Context) error {
	app, err := ctx.Open()
	if err != nil {
		return err
	}
	ctx.Println("Reached:")
	printMilestones(ctx, app.Milestones.Archive(), c.ShowIDs)
	return nil
}

type MilestoneAddCmd struct {
	Title       string `arg:"" help:"Milestone title."`
	Description string `help:"Milestone description."`
	Start       int    `help:"Age window start in months." required:""`
	End         int    `help:"Age window end in months." required:""`
	Category    string `help:"Category (motor, language, social, cognitive, custom)." default:"custom"`
}

func (c *MilestoneAddCmd) Run(ctx *cli.Context) error {
	category, err := models.ParseMilestoneCategory(c.Category)
	if err != nil {
		return err
	}
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	item, err := app.Milestones.UpsertMilestone(milestones.Draft{
		Title:          c.Title,
		Description:    c.Description,
		AgeStartMonths: c.Start,
		AgeEndMonths:   c.End,
		Category:       category,
	})
	if err != nil {
		return err
	}

	ctx.Printf("✓ Added milestone: %s (ID: %s)\n", item.Title, item.ID)
	return nil
}

// MilestoneEditCmd changes the given fields and keeps the rest.
type MilestoneEditCmd struct {
	ID          string  `arg:"" help:"Milestone ID."`
	Title       string  `help:"New title."`
	Description *string `help:"New description."`
	Start       *int    `help:"New age window start in months."`
	End         *int    `help:"New age window end in months."`
	Category    string  `help:"New category."`
}

func (c *MilestoneEditCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	current, err := milestones.Find(app.Milestones.Milestones.Get(), c.ID)
	if err != nil {
		return err
	}

	draft := milestones.Draft{
		ID:             current.ID,
		Title:          current.Title,
		Description:    current.Description,
		AgeStartMonths: current.AgeStartMonths,
		AgeEndMonths:   current.AgeEndMonths,
		Category:       current.Category,
	}
	if c.Title != "" {
		draft.Title = c.Title
	}
	if c.Description != nil {
		draft.Description = *c.Description
	}
	if c.Start != nil {
		draft.AgeStartMonths = *c.Start
	}
	if c.End != nil {
		draft.AgeEndMonths = *c.End
	}
	if c.Category != "" {
		if draft.Category, err = models.ParseMilestoneCategory(c.Category); err != nil {
			return err
		}
	}

	item, err := app.Milestones.UpsertMilestone(draft)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Updated milestone: %s\n", item.Title)
	return nil
}

type MilestoneAdvanceCmd struct {
	ID string `arg:"" help:"Milestone ID."`
}

func (c *MilestoneAdvanceCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	if err := app.Milestones.Advance(c.ID); err != nil {
		return err
	}
	return printLevel(ctx, app.Milestones.Milestones.Get(), c.ID)
}

type MilestoneLevelCmd struct {
	ID    string `arg:"" help:"Milestone ID."`
	Level string `arg:"" help:"Level to record (didIt, learning, mastered)."`
}

func (c *MilestoneLevelCmd) Run(ctx *cli.Context) error {
	level, err := models.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	if err := app.Milestones.SetLevel(c.ID, level); err != nil {
		return err
	}
	return printLevel(ctx, app.Milestones.Milestones.Get(), c.ID)
}

type MilestoneUndoCmd struct {
	ID string `arg:"" help:"Milestone ID."`
}

func (c *MilestoneUndoCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	if err := app.Milestones.UndoLevel(c.ID); err != nil {
		return err
	}
	return printLevel(ctx, app.Milestones.Milestones.Get(), c.ID)
}

func printLevel(ctx *cli.Context, items []models.MilestoneItem, id string) error {
	m, err := milestones.Find(items, id)
	if err != nil {
		return err
	}
	ctx.Printf("✓ %s is now %s\n", m.Title, m.Level)
	return nil
}

// MilestoneHistoryCmd shows the level log, or replaces it when entries are given.
type MilestoneHistoryCmd struct {
	ID      string   `arg:"" help:"Milestone ID."`
	Entries []string `arg:"" optional:"" help:"Replacement entries as level=timestamp (e.g. didIt=2025-03-01T09:00:00)."`
	Clear   bool     `help:"Remove every entry."`
}

func (c *MilestoneHistoryCmd) Run(ctx *cli.Context) error {
	if len(c.Entries) == 0 && !c.Clear {
		app, err := ctx.Open()
		if err != nil {
			return err
		}
		m, err := milestones.Find(app.Milestones.Milestones.Get(), c.ID)
		if err != nil {
			return err
		}
		ctx.Printf("%s (%s)\n", m.Title, m.Level)
		if len(m.LevelHistory) == 0 {
			ctx.Println("  No history")
		}
		for _, entry := range m.LevelHistory {
			ctx.Printf("  %s  %s\n", entry.TimestampIso, cli.LevelBadge(entry.Level))
		}
		return nil
	}

	history, err := parseEntries(c.Entries)
	if err != nil {
		return err
	}
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	if err := app.Milestones.SetLevelHistory(c.ID, history); err != nil {
		return err
	}
	return printLevel(ctx, app.Milestones.Milestones.Get(), c.ID)
}

func parseEntries(entries []string) ([]models.LevelLogEntry, error) {
	history := make([]models.LevelLogEntry, 0, len(entries))
	for _, entry := range entries {
		name, ts, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid history entry %q (expected level=timestamp)", entry)
		}
		level, err := models.ParseLevel(name)
		if err != nil {
			return nil, err
		}
		history = append(history, models.LevelLogEntry{Level: level, TimestampIso: ts})
	}
	return history, nil
}

type MilestoneDeleteCmd struct {
	ID  string `arg:"" help:"Custom milestone ID."`
	Yes bool   `short:"y" help:"Delete without asking."`
}

func (c *MilestoneDeleteCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	m, err := milestones.Find(app.Milestones.Milestones.Get(), c.ID)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Delete %q?", m.Title), c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}
	if err := app.Milestones.DeleteMilestone(c.ID); err != nil {
		return err
	}

	ctx.Printf("✓ Deleted milestone: %s\n", m.Title)
	return nil
}
