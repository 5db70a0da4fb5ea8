package notification

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

var (
	ErrUnknownTemplate = errors.New("notification: unknown template")
	ErrInvalidCatalog  = errors.New("notification: invalid template catalog")
)

type catalogFile struct {
	Templates map[Type]struct {
		Title   string `yaml:"title"`
		Message string `yaml:"message"`
	} `yaml:"templates"`
}

type messageTemplate struct {
	title   string
	message *template.Template
}

// Catalog maps notification types to their renderable templates.
type Catalog struct {
	templates map[Type]messageTemplate
}

// LoadCatalog parses the embedded YAML template catalog. Called once at
// startup; a malformed catalog is a build defect, not a runtime condition.
func LoadCatalog() (*Catalog, error) {
	return parseCatalog(templatesYAML)
}

func parseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	if len(file.Templates) == 0 {
		return nil, fmt.Errorf("%w: no templates defined", ErrInvalidCatalog)
	}

	c := &Catalog{templates: make(map[Type]messageTemplate, len(file.Templates))}
	for typ, entry := range file.Templates {
		tmpl, err := template.New(string(typ)).Option("missingkey=error").Parse(entry.Message)
		if err != nil {
			return nil, errors.Join(ErrInvalidCatalog, err)
		}
		c.templates[typ] = messageTemplate{title: entry.Title, message: tmpl}
	}
	return c, nil
}

// Render produces the title and message for a notification type. Missing
// template data is an error so broken call sites surface in tests instead
// of sending half-rendered messages.
func (c *Catalog) Render(typ Type, data map[string]string) (title, message string, err error) {
	tmpl, ok := c.templates[typ]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, typ)
	}

	var b strings.Builder
	if err := tmpl.message.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("notification: render %s: %w", typ, err)
	}
	return tmpl.title, b.String(), nil
}
