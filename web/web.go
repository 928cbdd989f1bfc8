package web

import (
	"embed"
	"io/fs"

	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/h"
)

//go:embed locales/*.json
var bundle embed.FS

// Bundle holds the catalogs shipped with the binary under locales/<code>.json.
func Bundle() fs.FS {
	return bundle
}

// Locales is Bundle rooted at locales/, as served on /locales.
func Locales() fs.FS {
	return h.Safe(fs.Sub(bundle, "locales"))
}

// Embedded returns the literal catalogs compiled into the shell. en starts
// empty and is filled by the bundled or remote catalog when configured so.
func Embedded() map[f.LocaleCode][]byte {
	return map[f.LocaleCode][]byte{
		"en": []byte(`{}`),
	}
}

func Routes() []f.Route {
	return []f.Route{
		{Path: "/", Name: "landing", View: Landing},
		{Path: "/chat", Name: "chat", View: Chat},
		{Path: "/menu", Name: "menu", View: Menu},
		{Path: "/tinylesson", Name: "tinylesson", View: TinyLesson},
		{Path: "/tinylesson/:theme/:language", Name: "tinylessoninside", View: TinyLessonInside, Props: true},
		{Path: "/pronouncepractice", Name: "pronouncepractice", View: PronouncePractice},
	}
}
