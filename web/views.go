package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	f "github.com/soffa-projects/tutor-shell/core"
)

var lessonThemes = []string{"travel", "food", "work"}

type section func(w io.Writer, c f.ViewContext) error

func layout(c f.ViewContext, title string, body section) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!doctype html><html lang="%s"><head><meta charset="utf-8"><title>%s</title></head><body data-route="%s">`,
			templ.EscapeString(string(c.Locale())), text(c.T(title)), templ.EscapeString(c.Route)); err != nil {
			return err
		}
		if err := nav(w, c); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<main>"); err != nil {
			return err
		}
		if err := body(w, c); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main></body></html>")
		return err
	})
}

func nav(w io.Writer, c f.ViewContext) error {
	links := [][2]string{
		{"/", "nav.home"},
		{"/chat", "nav.chat"},
		{"/menu", "nav.menu"},
		{"/tinylesson", "nav.lessons"},
		{"/pronouncepractice", "nav.pronunciation"},
	}
	var b strings.Builder
	b.WriteString("<nav>")
	for _, link := range links {
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, link[0], text(c.T(link[1])))
	}
	b.WriteString("</nav>")
	_, err := io.WriteString(w, b.String())
	return err
}

func text(value string) string {
	return templ.EscapeString(value)
}

func Landing(c f.ViewContext) templ.Component {
	return layout(c, "app.title", func(w io.Writer, c f.ViewContext) error {
		_, err := fmt.Fprintf(w, `<h1>%s</h1><p>%s</p><p>%s</p><a href="/menu">%s</a>`,
			text(c.T("app.title")),
			text(c.T("app.tagline")),
			text(c.T("landing.lessons", len(lessonThemes))),
			text(c.T("landing.cta")))
		return err
	})
}

func Chat(c f.ViewContext) templ.Component {
	return layout(c, "chat.title", func(w io.Writer, c f.ViewContext) error {
		_, err := fmt.Fprintf(w, `<h1>%s</h1><form method="post" action="/api/chat"><input name="message" placeholder="%s"></form>`,
			text(c.T("chat.title")), text(c.T("chat.placeholder")))
		return err
	})
}

func Menu(c f.ViewContext) templ.Component {
	return layout(c, "menu.title", func(w io.Writer, c f.ViewContext) error {
		_, err := fmt.Fprintf(w, `<h1>%s</h1><ul><li><a href="/chat">%s</a></li><li><a href="/tinylesson">%s</a></li><li><a href="/pronouncepractice">%s</a></li></ul>`,
			text(c.T("menu.title")), text(c.T("nav.chat")), text(c.T("nav.lessons")), text(c.T("nav.pronunciation")))
		return err
	})
}

func TinyLesson(c f.ViewContext) templ.Component {
	return layout(c, "tinylesson.title", func(w io.Writer, c f.ViewContext) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<h1>%s</h1><ul>", text(c.T("tinylesson.title")))
		for _, theme := range lessonThemes {
			fmt.Fprintf(&b, `<li><a href="/tinylesson/%s/%s">%s</a></li>`,
				theme, templ.EscapeString(string(c.Locale())), text(c.T("tinylesson.theme", map[string]any{"Theme": theme})))
		}
		b.WriteString("</ul>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func TinyLessonInside(c f.ViewContext) templ.Component {
	return layout(c, "tinylesson.title", func(w io.Writer, c f.ViewContext) error {
		_, err := fmt.Fprintf(w, `<h1>%s</h1><p class="theme">%s</p><p class="language">%s</p>`,
			text(c.T("tinylesson.title")),
			text(c.T("tinylesson.theme", map[string]any{"Theme": c.Prop("theme")})),
			text(c.T("tinylesson.language", map[string]any{"Language": c.Prop("language")})))
		return err
	})
}

func PronouncePractice(c f.ViewContext) templ.Component {
	return layout(c, "pronounce.title", func(w io.Writer, c f.ViewContext) error {
		_, err := fmt.Fprintf(w, `<h1>%s</h1><button type="button">%s</button>`,
			text(c.T("pronounce.title")), text(c.T("pronounce.record")))
		return err
	})
}
