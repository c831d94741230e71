// Package display renders decks and simulation results as plain-text reports.
package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ramonehamilton/DeckOps/internal/app"
	"github.com/ramonehamilton/DeckOps/internal/storage"
	"github.com/ramonehamilton/DeckOps/internal/storage/models"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

// DefaultTopCards is how many appearance rows a report shows.
const DefaultTopCards = 15

var roleLabels = map[deck.Role]string{
	deck.RoleStarter:  "Starters",
	deck.RoleBrick:    "Bricks",
	deck.RoleNeutral:  "Neutral",
	deck.RoleHandTrap: "Handtraps",
}

// Simulation writes averages, tips and the top appearance rates of a report.
// top <= 0 shows every card.
func Simulation(w io.Writer, report *app.SimulationReport, top int) {
	res := report.Result

	header(w, fmt.Sprintf("Simulation: %s", report.DeckName))
	fmt.Fprintf(w, "Hands: %d x %d cards\n\n", res.Runs, res.DrawCount)

	fmt.Fprintln(w, "Average per hand")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range deck.Roles {
		fmt.Fprintf(tw, "  %s\t%.2f\n", roleLabels[r], res.Averages.ByRole[r])
	}
	for _, c := range deck.Categories {
		fmt.Fprintf(tw, "  %s\t%.2f\n", titleCase(string(c)), res.Averages.ByCategory[c])
	}
	_ = tw.Flush()
	fmt.Fprintln(w)

	if len(report.Tips) > 0 {
		fmt.Fprintln(w, "Tips")
		for _, tip := range report.Tips {
			fmt.Fprintf(w, "  - %s\n", tip)
		}
		fmt.Fprintln(w)
	}

	appearances := res.Appearances
	if top > 0 && top < len(appearances) {
		appearances = appearances[:top]
	}
	if len(appearances) == 0 {
		return
	}

	fmt.Fprintln(w, "Opening hand appearance")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  Card\tRole\tCopies\tHands\t%")
	for _, a := range appearances {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\t%.1f\n", cardName(a.Card), a.Card.Role, a.Card.Quantity, a.Appearances, a.Percentage)
	}
	_ = tw.Flush()
}

// Decks writes a table of saved decks.
func Decks(w io.Writer, decks []*storage.SavedDeck) {
	if len(decks) == 0 {
		fmt.Fprintln(w, "No saved decks found.")
		return
	}

	header(w, "Saved Decks")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tCards\tSource\tModified")
	for _, d := range decks {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", d.ID, d.Name, d.TotalCards(), d.Source, d.ModifiedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

// Composition writes a deck's role and category counts.
func Composition(w io.Writer, name string, comp *deck.Composition) {
	header(w, fmt.Sprintf("Deck: %s (%d cards)", name, comp.TotalCards))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range deck.Roles {
		fmt.Fprintf(tw, "  %s\t%d\n", roleLabels[r], comp.ByRole[r])
	}
	for _, c := range deck.Categories {
		fmt.Fprintf(tw, "  %s\t%d\n", titleCase(string(c)), comp.ByCategory[c])
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "  Cardmarket price: %.2f\n", comp.TotalPrice)
}

// History writes recorded simulation summaries.
func History(w io.Writer, runs []*models.SimulationRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No simulations recorded.")
		return
	}

	header(w, "Simulation History")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tDraw\tRuns\tStarters\tBricks\tHandtraps\tNeutral")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.DrawCount, r.Runs,
			r.AvgStarters, r.AvgBricks, r.AvgHandTraps, r.AvgNeutral)
	}
	_ = tw.Flush()
}

func header(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
}

func cardName(c deck.Card) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("#%d", c.YugiohID)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
