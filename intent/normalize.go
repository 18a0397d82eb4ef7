// ABOUTME: Lightweight multilingual normalization for edit requests.
// ABOUTME: Maps known foreign vocabulary to English so keyword matching is language-agnostic.

package intent

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// baseVocabulary maps known foreign-language UI/action/property/color words to
// their English equivalents. Unmapped words pass through unchanged; this is a
// vocabulary table, not a translator.
var baseVocabulary = map[string]string{
	// Russian
	"кнопка":    "button",
	"кнопку":    "button",
	"заголовок": "header",
	"текст":     "text",
	"фон":       "background",
	"цвет":      "color",
	"красный":   "red",
	"красным":   "red",
	"синий":     "blue",
	"синим":     "blue",
	"зеленый":   "green",
	"белый":     "white",
	"черный":    "black",
	"изменить":  "change",
	"измени":    "change",
	"сделать":   "make",
	"сделай":    "make",
	"добавить":  "add",
	"добавь":    "add",
	"удалить":   "remove",
	"удали":     "remove",
	"больше":    "bigger",
	"меньше":    "smaller",
	"выровнять": "align",

	// Spanish
	"botón":     "button",
	"boton":     "button",
	"encabezado": "header",
	"texto":     "text",
	"fondo":     "background",
	"rojo":      "red",
	"azul":      "blue",
	"verde":     "green",
	"blanco":    "white",
	"negro":     "black",
	"cambiar":   "change",
	"cambia":    "change",
	"hacer":     "make",
	"agregar":   "add",
	"quitar":    "remove",
	"grande":    "bigger",
	"pequeño":   "smaller",
	"alinear":   "align",

	// German
	"knopf":       "button",
	"schaltfläche": "button",
	"überschrift": "header",
	"hintergrund": "background",
	"farbe":       "color",
	"rot":         "red",
	"blau":        "blue",
	"grün":        "green",
	"weiß":        "white",
	"schwarz":     "black",
	"ändern":      "change",
	"machen":      "make",
	"hinzufügen":  "add",
	"entfernen":   "remove",
	"größer":      "bigger",
	"kleiner":     "smaller",
	"ausrichten":  "align",
}

// Vocabulary is a normalization table. The zero value is unusable; build one
// with NewVocabulary and optionally extend it from a YAML file.
type Vocabulary struct {
	words map[string]string
}

// NewVocabulary returns a Vocabulary seeded with the builtin table.
func NewVocabulary() *Vocabulary {
	words := make(map[string]string, len(baseVocabulary))
	for k, v := range baseVocabulary {
		words[strings.ToLower(k)] = v
	}
	return &Vocabulary{words: words}
}

// vocabularyFile is the YAML shape for vocabulary extension files:
// a flat words mapping of foreign word to English equivalent.
type vocabularyFile struct {
	Words map[string]string `yaml:"words"`
}

// ExtendFromYAML merges additional word mappings from a YAML document.
// Later entries override builtin ones.
func (v *Vocabulary) ExtendFromYAML(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read vocabulary: %w", err)
	}
	var file vocabularyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse vocabulary: %w", err)
	}
	for k, val := range file.Words {
		v.words[strings.ToLower(k)] = val
	}
	return nil
}

// ExtendFromFile merges word mappings from a YAML file on disk.
func (v *Vocabulary) ExtendFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()
	return v.ExtendFromYAML(f)
}

// Normalize lowercases the message and replaces every known foreign word with
// its English equivalent, preserving word order. Punctuation clinging to a
// word is kept around the replacement.
func (v *Vocabulary) Normalize(message string) string {
	fields := strings.Fields(strings.ToLower(message))
	for i, field := range fields {
		core := strings.Trim(field, ".,!?;:\"'()")
		if core == "" {
			continue
		}
		mapped, ok := v.words[core]
		if !ok {
			continue
		}
		fields[i] = strings.Replace(field, core, mapped, 1)
	}
	return strings.Join(fields, " ")
}
