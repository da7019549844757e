package baby

import (
	"fmt"
	"strings"

	"github.com/julianstephens/littlesteps/internal/cli"
	"github.com/julianstephens/littlesteps/internal/constants"
)

type BabyShowCmd struct{}

func (c *BabyShowCmd) Run(ctx *cli.Context) error {
	app, err := ctx.Open()
	if err != nil {
		return err
	}
	baby := app.Milestones.Baby.Get()

	ctx.Println(cli.TitleStyle.Render(baby.Name))
	ctx.Printf("  Born:   %s\n", baby.BirthDateIso)
	if age, err := app.Milestones.AgeInMonths(); err == nil {
		ctx.Printf("  Age:    %d months\n", age)
	}
	if baby.WeightLbs != nil {
		ctx.Printf("  Weight: %.1f lbs\n", *baby.WeightLbs)
	}
	if baby.PhotoURL != "" {
		ctx.Printf("  Photo:  %s\n", baby.PhotoURL)
	}
	if next, err := app.Milestones.NextBirthday(); err == nil {
		ctx.Printf("  Next birthday: %s\n", next.Format(constants.DateFormat))
	}
	return nil
}

// BabySetCmd overwrites the profile. Omitted flags keep their current value.
type BabySetCmd struct {
	Name   string  `help:"Baby's name."`
	Birth  string  `help:"Birth date and time, local ISO-8601 (2024-10-27T17:23:00)."`
	Photo  string  `help:"Photo URL."`
	Weight float64 `help:"Weight in pounds."`
}

func (c *BabySetCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	baby := app.Milestones.Baby.Get()
	if c.Name != "" {
		baby.Name = strings.TrimSpace(c.Name)
	}
	if c.Birth != "" {
		baby.BirthDateIso = c.Birth
	}
	if c.Photo != "" {
		baby.PhotoURL = c.Photo
	}
	if c.Weight != 0 {
		if c.Weight < 0 {
			return fmt.Errorf("weight must be positive")
		}
		weight := c.Weight
		baby.WeightLbs = &weight
	}
	if err := app.Milestones.SetBaby(baby); err != nil {
		return err
	}

	ctx.Printf("✓ Updated profile for %s\n", baby.Name)
	return nil
}

type BabyWeightCmd struct {
	Lbs float64 `arg:"" help:"Weight in pounds."`
}

func (c *BabyWeightCmd) Run(ctx *cli.Context) error {
	app, err := ctx.OpenSignedIn()
	if err != nil {
		return err
	}
	if err := app.Milestones.SetBabyWeight(c.Lbs); err != nil {
		return err
	}

	ctx.Printf("✓ Weight set to %.1f lbs\n", c.Lbs)
	return nil
}
