package service

import "regexp"

// TemplateService renders campaign message templates
type TemplateService interface {
	Render(template string, vars map[string]string) string
	ExtractPlaceholders(template string) []string
}

type templateService struct {
	placeholderPattern *regexp.Regexp
}

// NewTemplateService creates a new template service
func NewTemplateService() TemplateService {
	return &templateService{
		placeholderPattern: regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`),
	}
}

// Render replaces every occurrence of each {{key}} token bound in vars
// with its value. Tokens with no bound key are left verbatim, so a
// template mentioning a variable the event does not provide passes
// through unchanged rather than failing. Pure function: no I/O, no
// mutation.
func (s *templateService) Render(template string, vars map[string]string) string {
	return s.placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2]
		if value, ok := vars[key]; ok {
			return value
		}
		return match
	})
}

// ExtractPlaceholders returns all placeholder names found in template
func (s *templateService) ExtractPlaceholders(template string) []string {
	matches := s.placeholderPattern.FindAllStringSubmatch(template, -1)
	placeholders := make([]string, 0, len(matches))
	for _, match := range matches {
		if len(match) > 1 {
			placeholders = append(placeholders, match[1])
		}
	}
	return placeholders
}
