// Package sources implements the pluggable source side of the engine.
//
// Two registries select what gets built: connectors (one per database,
// registered from their own files in init functions) and modes (cursor or
// paging). Adding a database or a retrieval mode means registering a new
// entry, not editing a conditional chain.
package sources

import (
	"errors"

	"github.com/molnia/dbatch/core"
	"github.com/molnia/dbatch/core/builders"
)

var errNoValidTypeAliases = errors.New("no valid type aliases provided")

// Connector opens a sql client for one database type.
type Connector interface {
	Connect(url string) (*builders.Client, error)
	// Placeholder returns the n-th query placeholder in the dialect of the
	// database (1-based).
	Placeholder(n int) string
}

// registeredConnectors holds implemented connectors - specific databases
// register themselves in their init functions.
var registeredConnectors = make(map[string]Connector)

func registerConnector(connector Connector, aliases ...string) error {
	if len(aliases) < 1 {
		return errNoValidTypeAliases
	}

	invalidCount := 0
	for _, alias := range aliases {
		if alias == "" {
			invalidCount++
			continue
		}
		registeredConnectors[alias] = connector
	}

	if invalidCount == len(aliases) {
		return errNoValidTypeAliases
	}

	return nil
}

// constructor builds a source variant on top of an open client.
type constructor func(client *builders.Client, connector Connector) core.Source

var registeredModes = make(map[string]constructor)

func registerMode(mode string, fn constructor) {
	registeredModes[mode] = fn
}

// New creates a source of the given mode ("cursor" or "paging") for the
// database type and connection url.
func New(mode, typ, url string) (core.Source, error) {
	connector, ok := registeredConnectors[typ]
	if !ok {
		return nil, core.Configf("no connector registered for database type %q", typ)
	}

	ctor, ok := registeredModes[mode]
	if !ok {
		return nil, core.Configf("unknown source type %q", mode)
	}

	client, err := connector.Connect(url)
	if err != nil {
		return nil, core.Configf("connector.Connect: %v", err)
	}

	return ctor(client, connector), nil
}

// Modes lists the registered source modes.
func Modes() []string {
	out := make([]string, 0, len(registeredModes))
	for mode := range registeredModes {
		out = append(out, mode)
	}
	return out
}
