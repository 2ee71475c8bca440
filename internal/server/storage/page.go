package storage

const (
	DefaultPageSize     = 20
	DefaultPostPageSize = 100
	DefaultTopUsers     = 10
)

// Page is an offset/limit window. A non-positive Limit selects the
// operation's default.
type Page struct {
	Limit  int
	Offset int
}

// Normalize resolves the defaults for an operation.
func (p Page) Normalize(defaultLimit int) Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Paginate slices an already sorted list.
func Paginate[T any](items []T, p Page, defaultLimit int) []T {
	p = p.Normalize(defaultLimit)
	if p.Offset >= len(items) {
		return []T{}
	}
	end := min(p.Offset+p.Limit, len(items))
	return items[p.Offset:end]
}
