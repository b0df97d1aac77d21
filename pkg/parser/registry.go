package parser

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]LineParser{
		CouchDBName: NewCouchDB(nil),
	}
)

// Register makes a parser available by its name, replacing any parser
// previously registered under the same name.
func Register(p LineParser) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Name()] = p
}

// Lookup returns the parser registered under name.
func Lookup(name string) (LineParser, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown log format %q (available: %s)", name, strings.Join(namesLocked(), ", "))
	}
	return p, nil
}

// Names returns the registered format names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

// All returns every registered parser, sorted by name.
func All() []LineParser {
	registryMu.RLock()
	defer registryMu.RUnlock()
	parsers := make([]LineParser, 0, len(registry))
	for _, name := range namesLocked() {
		parsers = append(parsers, registry[name])
	}
	return parsers
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
