package scene

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLanguage = errors.New("unknown vocabulary language")

// DefaultDangerLabels are the detector classes treated as navigation hazards.
var DefaultDangerLabels = []string{"car", "bus", "truck", "motorcycle", "bicycle"}

// Template renders descriptors into sentences. Primary and Secondary accept the
// placeholders {name}, {position}, {distance} and {danger}.
type Template struct {
	Primary   string
	Secondary string
	Fallback  string
	Positions map[Position]string
	Distances map[Distance]string
	Dangerous string
	Safe      string
}

func (t Template) validate() error {
	var errs []error
	if t.Primary == "" {
		errs = append(errs, errors.New("primary sentence is empty"))
	}
	if t.Secondary == "" {
		errs = append(errs, errors.New("secondary sentence is empty"))
	}
	if t.Fallback == "" {
		errs = append(errs, errors.New("fallback sentence is empty"))
	}
	for _, p := range []Position{PositionLeft, PositionCenter, PositionRight} {
		if t.Positions[p] == "" {
			errs = append(errs, fmt.Errorf("position %q has no wording", p))
		}
	}
	for _, d := range []Distance{DistanceVeryClose, DistanceClose, DistanceMedium, DistanceFar} {
		if t.Distances[d] == "" {
			errs = append(errs, fmt.Errorf("distance %q has no wording", d))
		}
	}
	if t.Dangerous == "" || t.Safe == "" {
		errs = append(errs, errors.New("danger wording is empty"))
	}
	return errors.Join(errs...)
}

func (t Template) clone() Template {
	out := t
	out.Positions = make(map[Position]string, len(t.Positions))
	for k, v := range t.Positions {
		out.Positions[k] = v
	}
	out.Distances = make(map[Distance]string, len(t.Distances))
	for k, v := range t.Distances {
		out.Distances[k] = v
	}
	return out
}

// Vocabulary is the immutable configuration shared by ranking and description:
// the Danger Set, the label translations and the sentence template. Using one
// value for both keeps ranking priority and the spoken danger flag consistent.
type Vocabulary struct {
	language string
	danger   map[string]struct{}
	labels   map[string]string
	template Template
}

func NewVocabulary(language string, danger []string, labels map[string]string, tpl Template) (*Vocabulary, error) {
	if err := tpl.validate(); err != nil {
		return nil, fmt.Errorf("vocabulary %q: %w", language, err)
	}

	v := &Vocabulary{
		language: language,
		danger:   make(map[string]struct{}, len(danger)),
		labels:   make(map[string]string, len(labels)),
		template: tpl.clone(),
	}
	for _, label := range danger {
		label = strings.TrimSpace(label)
		if label != "" {
			v.danger[label] = struct{}{}
		}
	}
	for k, name := range labels {
		v.labels[k] = name
	}
	return v, nil
}

func (v *Vocabulary) Language() string {
	return v.language
}

func (v *Vocabulary) IsDangerous(label string) bool {
	_, ok := v.danger[label]
	return ok
}

// DisplayName falls back to the raw label for unknown classes.
func (v *Vocabulary) DisplayName(label string) string {
	if name, ok := v.labels[label]; ok && name != "" {
		return name
	}
	return label
}

func (v *Vocabulary) DangerLabels() []string {
	out := make([]string, 0, len(v.danger))
	for label := range v.danger {
		out = append(out, label)
	}
	return out
}

func (v *Vocabulary) render(pattern string, d Descriptor) string {
	danger := v.template.Safe
	if d.Dangerous {
		danger = v.template.Dangerous
	}
	return strings.NewReplacer(
		"{name}", d.DisplayName,
		"{position}", v.template.Positions[d.Position],
		"{distance}", v.template.Distances[d.Distance],
		"{danger}", danger,
	).Replace(pattern)
}

// Builtin returns one of the bundled vocabularies ("ru" or "en").
func Builtin(language string) (*Vocabulary, error) {
	switch language {
	case "ru":
		return NewVocabulary("ru", DefaultDangerLabels, russianLabels, russianTemplate)
	case "en":
		return NewVocabulary("en", DefaultDangerLabels, englishLabels, englishTemplate)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}
}

var russianLabels = map[string]string{
	"person":        "человек",
	"car":           "машина",
	"bus":           "автобус",
	"truck":         "грузовик",
	"motorcycle":    "мотоцикл",
	"bicycle":       "велосипед",
	"traffic light": "светофор",
	"stop sign":     "знак стоп",
	"chair":         "стул",
	"couch":         "диван",
	"bed":           "кровать",
	"dining table":  "стол",
	"laptop":        "ноутбук",
	"cell phone":    "телефон",
	"tv":            "телевизор",
	"bottle":        "бутылка",
	"cup":           "кружка",
	"book":          "книга",
	"backpack":      "рюкзак",
	"handbag":       "сумка",
	"dog":           "собака",
	"cat":           "кот",
}

var russianTemplate = Template{
	Primary:   "Перед вами {name}, {position}, {distance}. Это {danger}.",
	Secondary: "Также {name}, {position}, {distance}. Это {danger}.",
	Fallback:  "Я не вижу уверенных объектов. Подойдите ближе или улучшите освещение.",
	Positions: map[Position]string{
		PositionLeft:   "слева",
		PositionCenter: "по центру",
		PositionRight:  "справа",
	},
	Distances: map[Distance]string{
		DistanceVeryClose: "очень близко",
		DistanceClose:     "близко",
		DistanceMedium:    "на среднем расстоянии",
		DistanceFar:       "далеко",
	},
	Dangerous: "опасно",
	Safe:      "не опасно",
}

var englishLabels = map[string]string{
	"traffic light": "traffic light",
	"stop sign":     "stop sign",
	"dining table":  "table",
	"cell phone":    "phone",
	"tv":            "TV",
}

var englishTemplate = Template{
	Primary:   "In front of you: {name}, {position}, {distance}. This is {danger}.",
	Secondary: "Also {name}, {position}, {distance}. This is {danger}.",
	Fallback:  "I can't see any objects clearly. Move closer or improve the lighting.",
	Positions: map[Position]string{
		PositionLeft:   "on the left",
		PositionCenter: "in the center",
		PositionRight:  "on the right",
	},
	Distances: map[Distance]string{
		DistanceVeryClose: "very close",
		DistanceClose:     "close",
		DistanceMedium:    "at a medium distance",
		DistanceFar:       "far away",
	},
	Dangerous: "dangerous",
	Safe:      "not dangerous",
}
