// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bytes"
	"text/template"
)

// DefaultTopic fills the prompt when no topic is configured.
const DefaultTopic = "6G research"

var promptTmpl = template.Must(template.New("annotate").Parse(
	`Identify ONE key problem and solution from this {{.Topic}} abstract: {{.Abstract}}`))

// RenderPrompt builds the generator prompt for one abstract.
func RenderPrompt(topic, abstract string) (string, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, struct{ Topic, Abstract string }{topic, abstract})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
