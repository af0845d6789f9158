package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"skill-assessment/internal/models"
	"skill-assessment/pkg/validator"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// csvTable is a header-indexed CSV document. lines holds the source line of each row.
type csvTable struct {
	header map[string]int
	rows   [][]string
	lines  []int
}

func readCSV(r io.Reader) (*csvTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	table := &csvTable{header: make(map[string]int, len(first))}
	for i, name := range first {
		table.header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		line, _ := reader.FieldPos(0)
		table.rows = append(table.rows, row)
		table.lines = append(table.lines, line)
	}
	return table, nil
}

func (t *csvTable) require(columns ...string) error {
	for _, c := range columns {
		if _, ok := t.header[c]; !ok {
			return fmt.Errorf("missing column %q", c)
		}
	}
	return nil
}

// get returns the trimmed cell of column in row, or "" when absent
func (t *csvTable) get(row []string, column string) string {
	i, ok := t.header[column]
	if !ok || i >= len(row) {
		return ""
	}
	return validator.SanitizeString(row[i])
}

func parseBool(s string, fallback bool) bool {
	switch validator.SanitizeKey(s) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	}
	return fallback
}

// splitOptions splits a pipe-separated option list, dropping blanks
func splitOptions(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseLegacyCSV reads rows of the fixed-schema bank. Columns:
// id (optional), question_text, choice_a..choice_d, correct_choice, difficulty_level, set_number.
func parseLegacyCSV(r io.Reader) ([]models.LegacyQuestion, error) {
	table, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if err := table.require("question_text", "choice_a", "choice_b"); err != nil {
		return nil, err
	}

	questions := make([]models.LegacyQuestion, 0, len(table.rows))
	for n, row := range table.rows {
		line := table.lines[n]
		q := models.LegacyQuestion{
			QuestionText:  table.get(row, "question_text"),
			ChoiceA:       table.get(row, "choice_a"),
			ChoiceB:       table.get(row, "choice_b"),
			ChoiceC:       table.get(row, "choice_c"),
			ChoiceD:       table.get(row, "choice_d"),
			CorrectChoice: strings.ToUpper(table.get(row, "correct_choice")),
		}
		if err := validator.ValidateRequired("question_text", q.QuestionText); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if id := table.get(row, "id"); id != "" {
			q.ID, err = strconv.ParseInt(id, 10, 64)
			if err != nil || q.ID <= 0 {
				return nil, fmt.Errorf("line %d: invalid id %q", line, id)
			}
		}
		if c := q.CorrectChoice; c != "" && (len(c) != 1 || !strings.Contains("ABCD", c)) {
			return nil, fmt.Errorf("line %d: correct_choice must be one of A-D", line)
		}
		if level := strings.ToLower(table.get(row, "difficulty_level")); level != "" {
			switch models.Difficulty(level) {
			case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			default:
				return nil, fmt.Errorf("line %d: unknown difficulty_level %q", line, level)
			}
			q.DifficultyLevel = &level
		}
		if set := table.get(row, "set_number"); set != "" {
			v, err := strconv.Atoi(set)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid set_number %q", line, set)
			}
			q.SetNumber = &v
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// parseGenericCSV reads rows of the option-per-row bank, one question per line. Columns:
// id, category, subcategory (optional), question_text, options (pipe-separated),
// correct (option text or 1-based index, optional), is_active (optional, default true).
func parseGenericCSV(r io.Reader) ([]models.BankQuestion, error) {
	table, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if err := table.require("id", "category", "question_text", "options"); err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	questions := make([]models.BankQuestion, 0, len(table.rows))
	for n, row := range table.rows {
		line := table.lines[n]
		q := models.BankQuestion{
			ID:           table.get(row, "id"),
			Category:     table.get(row, "category"),
			Subcategory:  table.get(row, "subcategory"),
			QuestionText: table.get(row, "question_text"),
			IsActive:     parseBool(table.get(row, "is_active"), true),
		}
		idErr := validator.ValidateIdentifier(q.ID)
		switch {
		case q.ID == "":
			return nil, fmt.Errorf("line %d: id is empty", line)
		case idErr != nil:
			return nil, fmt.Errorf("line %d: invalid id %q: %w", line, q.ID, idErr)
		}
		for _, field := range []struct{ name, value string }{
			{"category", q.Category},
			{"question_text", q.QuestionText},
		} {
			if err := validator.ValidateRequired(field.name, field.value); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if first, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("line %d: id %q already used on line %d", line, q.ID, first)
		}
		seen[q.ID] = line

		options := splitOptions(table.get(row, "options"))
		correct := table.get(row, "correct")
		correctIndex, _ := strconv.Atoi(correct)
		for i, text := range options {
			q.Options = append(q.Options, models.BankOption{
				OptionText: text,
				IsCorrect:  correct != "" && (correctIndex == i+1 || strings.EqualFold(correct, text)),
				SortOrder:  i + 1,
			})
		}
		questions = append(questions, q)
	}
	return questions, nil
}
