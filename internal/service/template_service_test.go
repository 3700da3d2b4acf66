package service

import (
	"reflect"
	"testing"
)

func TestTemplateService_Render(t *testing.T) {
	svc := NewTemplateService()

	tests := []struct {
		name     string
		template string
		vars     map[string]string
		expected string
	}{
		{
			name:     "single placeholder",
			template: "Ola {{nome}}, seu pedido foi aprovado",
			vars:     map[string]string{"nome": "Ana"},
			expected: "Ola Ana, seu pedido foi aprovado",
		},
		{
			name:     "repeated placeholder replaced everywhere",
			template: "Hi {{nome}}, {{nome}}!",
			vars:     map[string]string{"nome": "Ana"},
			expected: "Hi Ana, Ana!",
		},
		{
			name:     "unbound placeholder passes through verbatim",
			template: "{{x}}",
			vars:     map[string]string{},
			expected: "{{x}}",
		},
		{
			name:     "bound empty value renders as blank",
			template: "Codigo: {{pix_code}}",
			vars:     map[string]string{"pix_code": ""},
			expected: "Codigo: ",
		},
		{
			name:     "mixed bound and unbound",
			template: "{{nome}} pagou {{total_price}} via {{metodo}}",
			vars:     map[string]string{"nome": "Ana", "total_price": "29.90"},
			expected: "Ana pagou 29.90 via {{metodo}}",
		},
		{
			name:     "no placeholders",
			template: "plain text message",
			vars:     map[string]string{"nome": "Ana"},
			expected: "plain text message",
		},
		{
			name:     "single braces are not placeholders",
			template: "{nome} is literal",
			vars:     map[string]string{"nome": "Ana"},
			expected: "{nome} is literal",
		},
		{
			name:     "empty template",
			template: "",
			vars:     map[string]string{"nome": "Ana"},
			expected: "",
		},
		{
			name:     "nil vars leaves tokens verbatim",
			template: "Hi {{nome}}",
			vars:     nil,
			expected: "Hi {{nome}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.Render(tt.template, tt.vars)
			if result != tt.expected {
				t.Errorf("Render() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestTemplateService_Render_Pure(t *testing.T) {
	svc := NewTemplateService()
	vars := map[string]string{"nome": "Ana"}

	first := svc.Render("Hi {{nome}}", vars)
	second := svc.Render("Hi {{nome}}", vars)

	if first != second {
		t.Errorf("Render() not deterministic: %q vs %q", first, second)
	}
	if len(vars) != 1 || vars["nome"] != "Ana" {
		t.Errorf("Render() mutated vars: %v", vars)
	}
}

func TestTemplateService_ExtractPlaceholders(t *testing.T) {
	svc := NewTemplateService()

	tests := []struct {
		name     string
		template string
		expected []string
	}{
		{
			name:     "multiple placeholders in order",
			template: "{{nome}} pagou {{total_price}}",
			expected: []string{"nome", "total_price"},
		},
		{
			name:     "no placeholders",
			template: "plain text",
			expected: []string{},
		},
		{
			name:     "duplicates are kept",
			template: "{{nome}} {{nome}}",
			expected: []string{"nome", "nome"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.ExtractPlaceholders(tt.template)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ExtractPlaceholders() = %v, want %v", result, tt.expected)
			}
		})
	}
}
