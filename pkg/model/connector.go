package model

// ConnectorType enumerates how a parent reaches a child.
type ConnectorType int

const (
	ConnectorNone ConnectorType = iota
	ConnectorIndex
	ConnectorKey
	ConnectorField
	ConnectorStatic
	ConnectorMethod
	ConnectorConstant
)

var connectorNames = [...]string{
	ConnectorNone:     "none",
	ConnectorIndex:    "index",
	ConnectorKey:      "key",
	ConnectorField:    "field",
	ConnectorStatic:   "static",
	ConnectorMethod:   "method",
	ConnectorConstant: "constant",
}

func (t ConnectorType) String() string {
	if t < 0 || int(t) >= len(connectorNames) {
		return "none"
	}
	return connectorNames[t]
}

// Anchors reports whether the connector starts a new expression instead of
// extending its parent's.
func (t ConnectorType) Anchors() bool {
	return t == ConnectorStatic || t == ConnectorConstant
}

// Connector describes the access form from a parent to a child.
type Connector struct {
	Type ConnectorType

	// Key is the already-formatted access key: "3" for an index, `"name"`
	// for a quoted map key, "Name" for a field or method, "pkg.Var" for a
	// static.
	Key string

	// Params lists parameter texts for call-like connectors.
	Params []string
}

// Root is the connector of a dump's root value.
func Root() Connector { return Connector{Type: ConnectorNone} }

// Index returns an index connector.
func Index(key string) Connector { return Connector{Type: ConnectorIndex, Key: key} }

// Key returns an associative-key connector. key must already be formatted
// as a literal.
func Key(key string) Connector { return Connector{Type: ConnectorKey, Key: key} }

// Field returns an instance-field connector.
func Field(name string) Connector { return Connector{Type: ConnectorField, Key: name} }

// Static returns a package-level variable connector.
func Static(qualified string) Connector { return Connector{Type: ConnectorStatic, Key: qualified} }

// Constant returns a package-level constant connector.
func Constant(qualified string) Connector { return Connector{Type: ConnectorConstant, Key: qualified} }

// Method returns a call connector.
func Method(name string, params ...string) Connector {
	return Connector{Type: ConnectorMethod, Key: name, Params: params}
}
