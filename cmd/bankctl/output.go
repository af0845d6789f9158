package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"skill-assessment/internal/database"
	"skill-assessment/internal/models"
)

const timeLayout = "2006-01-02 15:04"

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

func printRounds(w io.Writer, rounds []models.Round) {
	if len(rounds) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No rounds found")
		return
	}

	table := newTable(w, "ID", "Title", "Category", "Status", "Active", "Questions", "Starts", "Ends", "Updated")
	for _, r := range rounds {
		updated := r.UpdatedAt
		table.Append([]string{
			r.ID,
			r.Title,
			r.Category,
			r.Status,
			strconv.FormatBool(r.Active),
			strconv.Itoa(r.QuestionCount),
			formatTime(r.StartAt),
			formatTime(r.EndAt),
			formatTime(&updated),
		})
	}
	table.Render()
	fmt.Fprintf(w, "%d round(s)\n", len(rounds))
}

func printMigrations(w io.Writer, states []database.MigrationState) {
	table := newTable(w, "Version", "Title", "Applied")
	pending := 0
	for _, s := range states {
		applied := formatTime(s.AppliedAt)
		if s.AppliedAt == nil {
			applied = color.YellowString("pending")
			pending++
		}
		table.Append([]string{s.Version, s.Title, applied})
	}
	table.Render()

	if pending == 0 {
		color.New(color.FgGreen).Fprintln(w, "Schema is up to date")
		return
	}
	color.New(color.FgYellow).Fprintf(w, "%d migration(s) pending\n", pending)
}

func printCapabilities(w io.Writer, caps models.BankCapabilities) {
	table := newTable(w, "Column", "Present", "Sampling")
	table.Append([]string{"difficulty_level", strconv.FormatBool(caps.DifficultyLevel), "single-tier and weighted"})
	table.Append([]string{"set_number", strconv.FormatBool(caps.SetNumber), "single-tier fallback"})
	table.Render()
}

func printLegacySummary(w io.Writer, questions []models.LegacyQuestion) {
	counts := map[string]int{}
	for _, q := range questions {
		key := "(none)"
		if q.DifficultyLevel != nil {
			key = *q.DifficultyLevel
		}
		counts[key]++
	}

	table := newTable(w, "Difficulty", "Questions")
	for _, key := range []string{"easy", "medium", "hard", "(none)"} {
		if counts[key] > 0 {
			table.Append([]string{key, strconv.Itoa(counts[key])})
		}
	}
	table.SetFooter([]string{"Total", strconv.Itoa(len(questions))})
	table.Render()
}

func printGenericSummary(w io.Writer, questions []models.BankQuestion) {
	type tally struct{ active, inactive, options int }
	order := []string{}
	counts := map[string]*tally{}
	for _, q := range questions {
		t, ok := counts[q.Category]
		if !ok {
			t = &tally{}
			counts[q.Category] = t
			order = append(order, q.Category)
		}
		if q.IsActive {
			t.active++
		} else {
			t.inactive++
		}
		t.options += len(q.Options)
	}

	table := newTable(w, "Category", "Active", "Inactive", "Options")
	for _, category := range order {
		t := counts[category]
		table.Append([]string{category, strconv.Itoa(t.active), strconv.Itoa(t.inactive), strconv.Itoa(t.options)})
	}
	table.Render()
}
