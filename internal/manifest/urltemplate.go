package manifest

import (
	"fmt"

	"github.com/flanksource/gomplate/v3"
)

// RenderTemplate renders a RuntimeSpec template field (URLTemplate,
// ChecksumURL, or an EnvVars value) against the given bindings (version/os/
// arch/install_dir, plus anything the caller adds), using gomplate's
// combined Go-template/CEL engine. Grounded on the predecessor's
// pkg/template.TemplateURL, which does the same job for the same bindings
// but through a package-level helper rather than a method; heavier than
// format.renderTemplate's bare string substitution because these templates
// routinely need os/arch remapping ("darwin" -> "macos") that a template
// conditional can express and flat substitution cannot.
func RenderTemplate(tmpl string, data map[string]string) (string, error) {
	rendered := make(map[string]interface{}, len(data))
	for k, v := range data {
		rendered[k] = v
	}
	result, err := gomplate.RunTemplate(rendered, gomplate.Template{Template: tmpl})
	if err != nil {
		return "", fmt.Errorf("rendering template %q: %w", tmpl, err)
	}
	return result, nil
}
