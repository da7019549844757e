package chore

import (
	"fmt"

	"github.com/julianstephens/littlesteps/internal/chores"
	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/models"
	"github.com/julianstephens/littlesteps/internal/utils"
)

type ChoreListCmd struct {
	ShowIDs bool `help:"Show chore IDs." name:"show-ids"`
}

func (c *ChoreListCmd) Run(ctx *cli.Context) error {
	app, err := ctx.Open()
	if err != nil {
		return err
	}
	today := app.Chores.Today()
	items := app.Chores.ChoresToday(today)
	if len(items) == 0 {
		ctx.Println("No chores found")
		return nil
	}

	ctx.Printf("Chores for %s:\n", today)
	for _, item := range items {
		mark := "○"
		title := item.Title
		if item.Done {
			mark = "✓"
			title = cli.DoneStyle.Render(title)
		}
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", item.ID)
		}
		details := string(item.Category)
		if item.EstimatedMinutes != nil {
			details += fmt.Sprintf(", %gm", *item.EstimatedMinutes)
		}
		if item.CaptainUsername != "" {
			details += ", captain " + item.CaptainUsername
		}
		ctx.Printf("  %s %s%s %s\n", mark, title, idStr, cli.DimStyle.Render("("+details+")"))
		if item.Done && item.LastCompletedBy != "" {
			ctx.Printf("      done by %s%s\n", item.LastCompletedBy, completedAt(ctx, item.LastCompletedAtIso))
		}
	}
	return nil
}

func completedAt(ctx *cli.Context, iso string) string {
	loc, err := ctx.Profile.Location()
	if err != nil {
		return ""
	}
	t, err := utils.ParseLocalISO(iso, loc)
	if err != nil {
		return ""
	}
	return " at " + t.Format("15:04")
}

type ChoreAddCmd struct {
	Title       string   `arg:"" help:"Chore title."`
	Description string   `help:"Chore description."`
	Category    string   `help:"Category (food, sleep, bio, entertainment, health)." default:"bio"`
	Minutes     *float64 `help:"Estimated minutes."`
	Captain     string   `help:"Username responsible for the chore. Defaults to you."`
}

func (c *ChoreAddCmd) Run(ctx *cli.Context) error {
	category, err := models.ParseChoreCategory(c.Category)
	if err != nil {
		return err
	}
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	item, err := app.Chores.Add(chores.Draft{
		Title:            c.Title,
		Description:      c.Description,
		Category:         category,
		EstimatedMinutes: c.Minutes,
		CaptainUsername:  c.Captain,
	})
	if err != nil {
		return err
	}

	ctx.Printf("✓ Added chore: %s (ID: %s)\n", item.Title, item.ID)
	return nil
}

// ChoreEditCmd changes the given fields and keeps the rest.
type ChoreEditCmd struct {
	ID          string   `arg:"" help:"Chore ID."`
	Title       string   `help:"New title."`
	Description *string  `help:"New description."`
	Category    string   `help:"New category."`
	Minutes     *float64 `help:"New estimate in minutes (0 clears it)."`
	Captain     *string  `help:"New captain username (empty clears it)."`
}

func (c *ChoreEditCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	current, err := chores.Find(app.Chores.Chores.Get(), c.ID)
	if err != nil {
		return err
	}

	draft := chores.Draft{
		Title:            current.Title,
		Description:      current.Description,
		Category:         current.Category,
		EstimatedMinutes: current.EstimatedMinutes,
		CaptainUsername:  current.CaptainUsername,
	}
	if c.Title != "" {
		draft.Title = c.Title
	}
	if c.Description != nil {
		draft.Description = *c.Description
	}
	if c.Category != "" {
		if draft.Category, err = models.ParseChoreCategory(c.Category); err != nil {
			return err
		}
	}
	if c.Minutes != nil {
		draft.EstimatedMinutes = c.Minutes
		if *c.Minutes == 0 {
			draft.EstimatedMinutes = nil
		}
	}
	if c.Captain != nil {
		draft.CaptainUsername = *c.Captain
	}

	if err := app.Chores.Update(c.ID, draft); err != nil {
		return err
	}
	ctx.Printf("✓ Updated chore: %s\n", draft.Title)
	return nil
}

type ChoreToggleCmd struct {
	ID string `arg:"" help:"Chore ID."`
}

func (c *ChoreToggleCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	if err := app.Chores.Toggle(c.ID); err != nil {
		return err
	}
	item, err := chores.Find(app.Chores.Chores.Get(), c.ID)
	if err != nil {
		return err
	}
	if chores.IsDoneToday(item, app.Chores.Today()) {
		ctx.Printf("✓ %s done\n", item.Title)
	} else {
		ctx.Printf("○ %s not done\n", item.Title)
	}
	return nil
}

type ChoreDeleteCmd struct {
	ID  string `arg:"" help:"Chore ID."`
	Yes bool   `short:"y" help:"Delete without asking."`
}

func (c *ChoreDeleteCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	item, err := chores.Find(app.Chores.Chores.Get(), c.ID)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(fmt.Sprintf("Delete %q?", item.Title), c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}
	if err := app.Chores.Delete(c.ID); err != nil {
		return err
	}

	ctx.Printf("✓ Deleted chore: %s\n", item.Title)
	return nil
}
