package layout

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ElementType identifies the type of layout element.
type ElementType string

const (
	ElementTypeList    ElementType = "list"
	ElementTypeRow     ElementType = "row"
	ElementTypePair    ElementType = "pair"
	ElementTypeIcon    ElementType = "icon"
	ElementTypeText    ElementType = "text"
	ElementTypeSubText ElementType = "subtext"
	ElementTypeDivider ElementType = "divider"
	ElementTypeTitle   ElementType = "title"
	ElementTypeContent ElementType = "content"
	ElementTypeButtons ElementType = "buttons"
	ElementTypeToast   ElementType = "toast"
	ElementTypeBox     ElementType = "box"
)

// ValidElements lists all recognized element types.
var ValidElements = map[string]ElementType{
	"list":    ElementTypeList,
	"row":     ElementTypeRow,
	"pair":    ElementTypePair,
	"icon":    ElementTypeIcon,
	"text":    ElementTypeText,
	"subtext": ElementTypeSubText,
	"divider": ElementTypeDivider,
	"title":   ElementTypeTitle,
	"content": ElementTypeContent,
	"buttons": ElementTypeButtons,
	"toast":   ElementTypeToast,
	"box":     ElementTypeBox,
}

// LayoutConfig is a parsed skin template ready for UI building.
type LayoutConfig struct {
	// Popup sizing (0 = use config default).
	MinWidth  int
	MaxWidth  int
	MinHeight int
	MaxHeight int
	// VisibleRows is the number of rows shown without scrolling, 0 for no
	// limit.
	VisibleRows int
	Elements    []LayoutElement
}

// LayoutElement is a single element in the layout.
type LayoutElement struct {
	Type       ElementType
	Attributes map[string]string
	Children   []LayoutElement
}

// Attr returns the named attribute or def if it is unset.
func (e LayoutElement) Attr(name, def string) string {
	if v, ok := e.Attributes[name]; ok {
		return v
	}
	return def
}

// IntAttr returns the named attribute as a pixel count, or def.
func (e LayoutElement) IntAttr(name string, def int) int {
	v, ok := e.Attributes[name]
	if !ok {
		return def
	}
	n, err := parsePixelValue(v)
	if err != nil {
		return def
	}
	return n
}

// Find returns the first element of type t, depth first.
func (c *LayoutConfig) Find(t ElementType) (LayoutElement, bool) {
	return find(c.Elements, t)
}

func find(elems []LayoutElement, t ElementType) (LayoutElement, bool) {
	for _, e := range elems {
		if e.Type == t {
			return e, true
		}
		if found, ok := find(e.Children, t); ok {
			return found, true
		}
	}
	return LayoutElement{}, false
}

// ParseTemplate parses an XML layout template from a reader.
func ParseTemplate(r io.Reader) (*LayoutConfig, error) {
	decoder := xml.NewDecoder(r)

	var config LayoutConfig
	var sawRoot bool
	for !sawRoot {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "popup" {
			return nil, fmt.Errorf("unexpected root element: %s", se.Name.Local)
		}
		sawRoot = true

		for _, attr := range se.Attr {
			v, err := parsePixelValue(attr.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %q", attr.Name.Local, attr.Value)
			}
			switch attr.Name.Local {
			case "min-width":
				config.MinWidth = v
			case "max-width":
				config.MaxWidth = v
			case "min-height":
				config.MinHeight = v
			case "max-height":
				config.MaxHeight = v
			case "rows":
				config.VisibleRows = v
			}
		}

		elements, err := parseElements(decoder)
		if err != nil {
			return nil, err
		}
		config.Elements = elements
	}

	if !sawRoot {
		return nil, fmt.Errorf("template has no <popup> root")
	}
	return &config, nil
}

// parsePixelValue parses a pixel value string (e.g., "300", "300px") to int.
func parsePixelValue(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	return strconv.Atoi(s)
}

// parseElements recursively parses child elements until the parent closes.
func parseElements(decoder *xml.Decoder) ([]LayoutElement, error) {
	var elements []LayoutElement

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return elements, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read element: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elemName := strings.ToLower(t.Name.Local)
			elemType, ok := ValidElements[elemName]
			if !ok {
				return nil, fmt.Errorf("unknown element type: %s", elemName)
			}

			elem := LayoutElement{
				Type:       elemType,
				Attributes: make(map[string]string),
			}
			for _, attr := range t.Attr {
				elem.Attributes[attr.Name.Local] = attr.Value
			}

			children, err := parseElements(decoder)
			if err != nil {
				return nil, err
			}
			elem.Children = children

			elements = append(elements, elem)

		case xml.EndElement:
			return elements, nil
		}
	}
}

// ParseTemplateString parses a template from a string.
func ParseTemplateString(s string) (*LayoutConfig, error) {
	return ParseTemplate(strings.NewReader(s))
}

// LoadTemplate loads a template from file.
func LoadTemplate(path string) (*LayoutConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseTemplate(f)
}

// Loader loads skin templates, preferring user overrides.
type Loader struct {
	templatesDir string
}

// NewLoader creates a new template loader. An empty dir disables overrides.
func NewLoader(templatesDir string) *Loader {
	return &Loader{templatesDir: templatesDir}
}

// Load loads a layout template by name.
// Checks the user directory first, then the embedded templates.
func (l *Loader) Load(name string) (*LayoutConfig, error) {
	if name == "" {
		name = SkinDefault.String()
	}

	if l.templatesDir != "" {
		templatePath := filepath.Join(l.templatesDir, name+".xml")
		if _, err := os.Stat(templatePath); err == nil {
			return LoadTemplate(templatePath)
		}
	}

	if config, ok := GetEmbeddedTemplate(name); ok {
		return config, nil
	}

	return nil, fmt.Errorf("layout template not found: %s", name)
}

// LoadSkin loads the template for skin, falling back to DefaultLayout when
// the template is missing or broken.
func (l *Loader) LoadSkin(skin Skin) (*LayoutConfig, error) {
	config, err := l.Load(skin.String())
	if err != nil {
		return DefaultLayout(), err
	}
	return config, nil
}

// DefaultLayout returns the built-in scrolling list layout.
func DefaultLayout() *LayoutConfig {
	return &LayoutConfig{
		MinWidth:  360,
		MaxWidth:  360,
		MaxHeight: 360,
		Elements: []LayoutElement{
			{
				Type:       ElementTypeList,
				Attributes: map[string]string{"spacing": "0"},
				Children: []LayoutElement{
					{
						Type: ElementTypeRow,
						Children: []LayoutElement{
							{Type: ElementTypeIcon},
							{
								Type:       ElementTypeBox,
								Attributes: map[string]string{"orientation": "vertical"},
								Children: []LayoutElement{
									{Type: ElementTypeText},
									{Type: ElementTypeSubText},
								},
							},
						},
					},
					{
						Type: ElementTypePair,
						Children: []LayoutElement{
							{Type: ElementTypeIcon},
							{Type: ElementTypeText},
						},
					},
					{Type: ElementTypeDivider},
				},
			},
			{Type: ElementTypeToast},
		},
	}
}
