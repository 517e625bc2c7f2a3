package publish

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// frontMatter is the header of every exported document. Unsafe tells the
// site generator the body is already HTML.
type frontMatter struct {
	Unsafe bool   `yaml:"unsafe"`
	Title  string `yaml:"title"`
	URL    string `yaml:"url"`
	Math   bool   `yaml:"math"`
}

func writeFrontMatter(buf *bytes.Buffer, title, url string) error {
	out, err := yaml.Marshal(frontMatter{Unsafe: true, Title: title, URL: url, Math: true})
	if err != nil {
		return fmt.Errorf("publish: front matter: %w", err)
	}
	buf.WriteString("---\n")
	buf.Write(out)
	buf.WriteString("---\n")
	return nil
}
