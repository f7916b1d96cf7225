package catalog

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Catalog loads authored content into a Store.
type Catalog struct {
	*Store
	md goldmark.Markdown
}

// New returns a catalog backed by s.
func New(s *Store) *Catalog {
	return &Catalog{
		Store: s,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Load reads content from path, or the embedded default when path is
// empty, renders its markdown and replaces the stored content.
func (c *Catalog) Load(ctx context.Context, path string) error {
	data := defaultContent
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading content %s: %w", path, err)
		}
		data = b
	}

	content, err := Parse(data)
	if err != nil {
		return err
	}
	if err := c.render(content); err != nil {
		return err
	}
	return c.Replace(ctx, content)
}

func (c *Catalog) render(content *Content) error {
	var err error
	if content.Profile.AboutHTML, err = c.markdown(content.Profile.About); err != nil {
		return fmt.Errorf("rendering about: %w", err)
	}
	if content.Profile.SummaryHTML, err = c.markdown(content.Profile.Summary); err != nil {
		return fmt.Errorf("rendering summary: %w", err)
	}
	for i := range content.Projects {
		p := &content.Projects[i]
		if p.SummaryHTML, err = c.markdown(p.Summary); err != nil {
			return fmt.Errorf("rendering project %s: %w", p.Slug, err)
		}
	}
	return nil
}

func (c *Catalog) markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Watch reloads path whenever it is written or replaced, until ctx is
// done. The parent directory is watched so editors that save by rename
// are picked up. A reload that fails keeps the previous content.
func (c *Catalog) Watch(ctx context.Context, path string, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	log.Printf("level=info msg=\"watching content\" path=%s", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if err := c.Load(ctx, abs); err != nil {
				log.Printf("level=error msg=\"content reload failed\" path=%s err=%q", abs, err)
				continue
			}
			log.Printf("level=info msg=\"content reloaded\" path=%s", abs)
			if onReload != nil {
				onReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("level=error msg=\"watcher error\" err=%q", err)
		}
	}
}
