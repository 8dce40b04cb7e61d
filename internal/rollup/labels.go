package rollup

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultLabels maps the category keys the analysis pipeline is known to
// emit onto their display labels. Keys outside this table fall back to a
// humanized form of the key itself.
var defaultLabels = map[string]string{
	"discovery":          "Discovery",
	"objection_handling": "Objection Handling",
	"closing":            "Closing",
	"rapport_building":   "Rapport Building",
	"product_knowledge":  "Product Knowledge",
	"qualification":      "Qualification",
	"next_steps":         "Next Steps",
	"active_listening":   "Active Listening",
	"talk_listen_ratio":  "Talk/Listen Ratio",
	"value_articulation": "Value Articulation",
}

var titleCaser = cases.Title(language.English)

// LabelTable resolves category keys to display labels. It is safe for
// concurrent use; Replace swaps the whole table atomically, which is how
// the file watcher applies hot reloads.
type LabelTable struct {
	mu     sync.RWMutex
	labels map[string]string
}

// NewLabelTable returns a table seeded with the built-in labels.
func NewLabelTable() *LabelTable {
	labels := make(map[string]string, len(defaultLabels))
	for k, v := range defaultLabels {
		labels[k] = v
	}
	return &LabelTable{labels: labels}
}

// Label returns the display label for a category key. Unknown keys are
// humanized: snake_case becomes Title Case ("cold_open" -> "Cold Open").
func (t *LabelTable) Label(key string) string {
	if t != nil {
		t.mu.RLock()
		l, ok := t.labels[key]
		t.mu.RUnlock()
		if ok {
			return l
		}
	}
	return Humanize(key)
}

// Replace atomically swaps the table contents. Entries merge on top of the
// built-in defaults so a partial file never loses the known labels.
func (t *LabelTable) Replace(labels map[string]string) {
	merged := make(map[string]string, len(defaultLabels)+len(labels))
	for k, v := range defaultLabels {
		merged[k] = v
	}
	for k, v := range labels {
		if k = strings.TrimSpace(k); k != "" && strings.TrimSpace(v) != "" {
			merged[k] = strings.TrimSpace(v)
		}
	}
	t.mu.Lock()
	t.labels = merged
	t.mu.Unlock()
}

// Humanize converts a snake_case key into a Title Case display label.
func Humanize(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}
