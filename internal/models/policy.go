package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// HistoryVersion is the current shape version of a HistoryEntry.
// Entries written before versioning decode with Version 0 and are read as version 1.
const HistoryVersion = 1

// History actions
const (
	HistoryActionCreated = "Created"
	HistoryActionUpdated = "Updated"
	HistoryActionDeleted = "Deleted"
)

// Difficulty is one sampling tier of the legacy bank
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the tiers in their canonical order
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// SetNumber maps a tier onto the legacy set_number column
func (d Difficulty) SetNumber() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 0
}

// DifficultyWeights holds a percentage per difficulty tier
type DifficultyWeights struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

func (w DifficultyWeights) get(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return w.Easy
	case DifficultyMedium:
		return w.Medium
	case DifficultyHard:
		return w.Hard
	}
	return 0
}

// Valid reports whether every weight is a percentage
func (w DifficultyWeights) Valid() bool {
	for _, d := range Difficulties {
		if v := w.get(d); v < 0 || v > 100 {
			return false
		}
	}
	return true
}

// SingleTier resolves the tier selected by the single-tier encoding:
// exactly one tier must carry weight 100.
func (w DifficultyWeights) SingleTier() (Difficulty, bool) {
	if !w.Valid() {
		return "", false
	}
	var tier Difficulty
	count := 0
	for _, d := range Difficulties {
		if w.get(d) == 100 {
			tier = d
			count++
		}
	}
	if count != 1 {
		return "", false
	}
	return tier, true
}

// Allocate splits total across tiers by largest remainder.
// It only applies to multi-tier weights summing to exactly 100.
func (w DifficultyWeights) Allocate(total int) (map[Difficulty]int, bool) {
	if !w.Valid() || total <= 0 {
		return nil, false
	}
	sum, nonZero := 0, 0
	for _, d := range Difficulties {
		sum += w.get(d)
		if w.get(d) > 0 {
			nonZero++
		}
	}
	if sum != 100 || nonZero < 2 {
		return nil, false
	}

	type share struct {
		tier      Difficulty
		remainder int
		index     int
	}
	counts := make(map[Difficulty]int, len(Difficulties))
	shares := make([]share, 0, len(Difficulties))
	assigned := 0
	for i, d := range Difficulties {
		exact := total * w.get(d)
		counts[d] = exact / 100
		assigned += counts[d]
		shares = append(shares, share{tier: d, remainder: exact % 100, index: i})
	}
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].remainder != shares[j].remainder {
			return shares[i].remainder > shares[j].remainder
		}
		return shares[i].index < shares[j].index
	})
	for i := 0; assigned < total; i++ {
		counts[shares[i%len(shares)].tier]++
		assigned++
	}
	return counts, true
}

// Value implements driver.Valuer
func (w DifficultyWeights) Value() (driver.Value, error) {
	return json.Marshal(w)
}

// Scan implements sql.Scanner. Unreadable stored weights decode as zero,
// which samples unweighted.
func (w *DifficultyWeights) Scan(src any) error {
	*w = DifficultyWeights{}
	b, ok := asBytes(src)
	if !ok || len(b) == 0 {
		return nil
	}
	var decoded DifficultyWeights
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil
	}
	*w = decoded
	return nil
}

// Criteria holds the ordered score thresholds of a round
type Criteria struct {
	Level1 int `json:"level1"`
	Level2 int `json:"level2"`
	Level3 int `json:"level3"`
}

// DefaultCriteria returns the thresholds applied when none are given
func DefaultCriteria() Criteria {
	return Criteria{Level1: 60, Level2: 70, Level3: 80}
}

// Valid reports whether thresholds are percentages in non-decreasing order
func (c Criteria) Valid() bool {
	for _, v := range []int{c.Level1, c.Level2, c.Level3} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return c.Level1 <= c.Level2 && c.Level2 <= c.Level3
}

// Value implements driver.Valuer
func (c Criteria) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner
func (c *Criteria) Scan(src any) error {
	b, ok := asBytes(src)
	if !ok || len(b) == 0 {
		*c = Criteria{}
		return nil
	}
	return json.Unmarshal(b, c)
}

// SubcategoryQuotas maps a subcategory to its advisory question quota
type SubcategoryQuotas map[string]int

// Value implements driver.Valuer
func (q SubcategoryQuotas) Value() (driver.Value, error) {
	if q == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]int(q))
}

// Scan implements sql.Scanner
func (q *SubcategoryQuotas) Scan(src any) error {
	b, ok := asBytes(src)
	if !ok || len(b) == 0 {
		*q = SubcategoryQuotas{}
		return nil
	}
	m := map[string]int{}
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*q = m
	return nil
}

// FieldDiff records one changed field; From and To hold the serialized values
type FieldDiff struct {
	Field string          `json:"field"`
	From  json.RawMessage `json:"from"`
	To    json.RawMessage `json:"to"`
}

// HistoryEntry is one append-only audit record of a round
type HistoryEntry struct {
	Version   int         `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Actor     string      `json:"actor"`
	Action    string      `json:"action"`
	Changes   []FieldDiff `json:"changes"`
}

// History is the ordered audit log of a round
type History []HistoryEntry

// Value implements driver.Valuer
func (h History) Value() (driver.Value, error) {
	if h == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]HistoryEntry(h))
}

// Scan implements sql.Scanner and upgrades unversioned entries
func (h *History) Scan(src any) error {
	b, ok := asBytes(src)
	if !ok || len(b) == 0 {
		*h = History{}
		return nil
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return fmt.Errorf("failed to decode round history: %w", err)
	}
	for i := range entries {
		if entries[i].Version == 0 {
			entries[i].Version = HistoryVersion
		}
	}
	*h = entries
	return nil
}

func asBytes(src any) ([]byte, bool) {
	switch v := src.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	}
	return nil, false
}
