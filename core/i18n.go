package f

import "context"

// Registry is the single store of locale entries. Only the loader calls
// Begin, Publish, Fail and Reset; everything else reads.
type Registry interface {
	Register(code LocaleCode, source LocaleSource) error
	Get(code LocaleCode) (RegistryEntry, bool)
	Codes() []LocaleCode
	Begin(code LocaleCode) (uint64, error)
	Publish(code LocaleCode, generation uint64, catalog *Catalog) error
	Fail(code LocaleCode, generation uint64, err error) error
	Reset(code LocaleCode) error
	Subscribe(handler func(n Notification))
	Close()
}

type Loader interface {
	// Load returns the terminal state of code, starting a load if the entry is
	// Unloaded and attaching to the in-flight one if it is Loading.
	Load(ctx context.Context, code LocaleCode) (*Catalog, error)
	// Reload abandons any in-flight load and fetches the catalog again.
	Reload(ctx context.Context, code LocaleCode) (*Catalog, error)
	Close()
}

type I18n interface {
	T(messageId string, args ...any) string
	Locale() LocaleCode
}

// LocaleService is what the page router needs from the locale subsystem.
type LocaleService interface {
	Default() LocaleCode
	Translator(active LocaleCode) I18n
	Activate(ctx context.Context, code LocaleCode) error
	Entries() []RegistryEntry
}
