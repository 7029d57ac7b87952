package util

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	erbTag       = regexp.MustCompile(`<%(=?)\s*(.*?)\s*-?%>`)
	inputCall    = regexp.MustCompile(`^input\(\s*["']([^"']+)["']\s*\)$`)
	foremanURL   = regexp.MustCompile(`^foreman_url\(\s*["']([^"']*)["']\s*\)$`)
	hostNameCall = regexp.MustCompile(`^@host\.name$`)
)

// RenderContext holds what a job template body can reference.
type RenderContext struct {
	// Declared lists the inputs of the template.
	Declared map[string]bool
	// Values are the input values given for this rendering.
	Values    map[string]string
	ServerURL string
	HostName  string
	// Preview renders missing values as $USER_INPUT[name] instead of an empty string.
	Preview bool
}

// RenderTemplate evaluates the ERB tags job templates use: input("x"),
// foreman_url("kind") and @host.name. Code tags (<% %>) are dropped.
func RenderTemplate(body string, rc RenderContext) (string, error) {
	var renderErr error
	out := erbTag.ReplaceAllStringFunc(body, func(tag string) string {
		if renderErr != nil {
			return ""
		}
		m := erbTag.FindStringSubmatch(tag)
		if m[1] != "=" {
			return ""
		}
		v, err := evaluate(m[2], rc)
		if err != nil {
			renderErr = err
			return ""
		}
		return v
	})
	if renderErr != nil {
		return "", renderErr
	}
	return out, nil
}

func evaluate(expr string, rc RenderContext) (string, error) {
	if m := inputCall.FindStringSubmatch(expr); m != nil {
		name := m[1]
		if !rc.Declared[name] {
			return "", fmt.Errorf("undefined template input %q", name)
		}
		if v, ok := rc.Values[name]; ok {
			return v, nil
		}
		if rc.Preview {
			return fmt.Sprintf("$USER_INPUT[%s]", name), nil
		}
		return "", nil
	}

	if m := foremanURL.FindStringSubmatch(expr); m != nil {
		return strings.TrimSuffix(rc.ServerURL, "/") + "/unattended/" + m[1], nil
	}

	if hostNameCall.MatchString(expr) {
		if rc.HostName == "" && rc.Preview {
			return "$HOST[name]", nil
		}
		return rc.HostName, nil
	}

	return "", fmt.Errorf("unsupported template expression %q", expr)
}

// TemplateInputs lists the input names a template body references, in order of first use.
func TemplateInputs(body string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range erbTag.FindAllStringSubmatch(body, -1) {
		if in := inputCall.FindStringSubmatch(m[2]); in != nil && !seen[in[1]] {
			seen[in[1]] = true
			names = append(names, in[1])
		}
	}
	return names
}
