// Package ibge resolves Brazilian municipality codes from a state and a free
// form city name.
package ibge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"coop-intake-go/pkg/textnorm"
)

//go:embed municipios.json
var embedded []byte

// Municipality is one entry of the reference file.
type Municipality struct {
	State string `json:"uf"`
	Name  string `json:"nome"`
	Code  string `json:"codigo"`
}

type Table struct {
	codes   map[string]string
	byState map[string][]string
}

// Key builds the lookup key "{UF}-{city}" with the city lowercased and without
// diacritics.
func Key(state, city string) string {
	return strings.ToUpper(strings.TrimSpace(state)) + "-" + textnorm.Lower(city)
}

// Load reads the reference file at path, or the embedded table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Parse(embedded)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read municipalities: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var items []Municipality
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode municipalities: %w", err)
	}
	return New(items), nil
}

func New(items []Municipality) *Table {
	t := &Table{
		codes:   make(map[string]string, len(items)),
		byState: make(map[string][]string),
	}
	for _, item := range items {
		if item.State == "" || item.Name == "" || item.Code == "" {
			continue
		}
		state := strings.ToUpper(strings.TrimSpace(item.State))
		t.codes[Key(state, item.Name)] = item.Code
		t.byState[state] = append(t.byState[state], strings.ToUpper(strings.TrimSpace(item.Name)))
	}
	for state := range t.byState {
		sort.Strings(t.byState[state])
	}
	return t
}

func (t *Table) Code(state, city string) (string, bool) {
	code, ok := t.codes[Key(state, city)]
	return code, ok
}

// Cities lists the upper-cased city names of a state, sorted.
func (t *Table) Cities(state string) []string {
	cities := t.byState[strings.ToUpper(strings.TrimSpace(state))]
	out := make([]string, len(cities))
	copy(out, cities)
	return out
}

func (t *Table) Len() int {
	return len(t.codes)
}
