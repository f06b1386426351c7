package keys

import (
	"net"
	"strconv"
	"strings"
)

// HostKind classifies the host part of a Locator.
type HostKind int

const (
	HostDomain HostKind = iota
	HostIPv4
	HostIPLiteral
)

// Locator is the locator component of a did:wk identifier: the
// `host[:port][/path]` suffix that follows the `@` separator, e.g.
// `steve.zerocore.ai:443/public`.
type Locator struct {
	HostKind HostKind
	Host     string
	Port     *uint16
	Path     string
}

// ParseLocator parses a locator component with an explicit character-class
// state machine rather than net/url, which is more permissive than the
// did:wk locator grammar allows.
func ParseLocator(s string) (*Locator, error) {
	if s == "" {
		return nil, &Error{Kind: ErrInvalidLocatorComponent, Message: "empty locator"}
	}

	rest := s
	var hostPart, pathPart string

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, &Error{Kind: ErrInvalidHost, Message: s}
		}
		hostPart = rest[:end+1]
		rest = rest[end+1:]

		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			pathPart = rest[idx:]
			rest = rest[:idx]
		}
		var port *uint16
		if strings.HasPrefix(rest, ":") {
			p, err := parsePort(rest[1:])
			if err != nil {
				return nil, err
			}
			port = p
		} else if rest != "" {
			return nil, &Error{Kind: ErrInvalidLocatorComponent, Message: s}
		}

		path, err := parseLocatorPath(pathPart)
		if err != nil {
			return nil, err
		}
		return &Locator{HostKind: HostIPLiteral, Host: hostPart, Port: port, Path: path}, nil
	}

	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		hostPart = rest[:idx]
		pathPart = rest[idx:]
	} else {
		hostPart = rest
	}

	var portPart string
	if idx := strings.IndexByte(hostPart, ':'); idx >= 0 {
		portPart = hostPart[idx+1:]
		hostPart = hostPart[:idx]
	}

	kind, err := parseHost(hostPart)
	if err != nil {
		return nil, err
	}

	var port *uint16
	if portPart != "" {
		port, err = parsePort(portPart)
		if err != nil {
			return nil, err
		}
	}

	path, err := parseLocatorPath(pathPart)
	if err != nil {
		return nil, err
	}

	return &Locator{HostKind: kind, Host: hostPart, Port: port, Path: path}, nil
}

func parseHost(s string) (HostKind, error) {
	if s == "" {
		return 0, &Error{Kind: ErrInvalidHost, Message: "empty host"}
	}
	if ip := net.ParseIP(s); ip != nil && ip.To4() != nil {
		return HostIPv4, nil
	}
	for _, r := range s {
		if !isRegNameRune(r) {
			return 0, &Error{Kind: ErrInvalidHost, Message: s}
		}
	}
	return HostDomain, nil
}

func isRegNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '.' || r == '_' || r == '~':
		return true
	}
	return false
}

func parsePort(s string) (*uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return nil, &Error{Kind: ErrInvalidPort, Message: s, Cause: err}
	}
	p := uint16(n)
	return &p, nil
}

func parseLocatorPath(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if !strings.HasPrefix(s, "/") {
		return "", &Error{Kind: ErrInvalidPath, Message: s}
	}
	return s, nil
}

// String encodes the locator back to its wire form.
func (l *Locator) String() string {
	var b strings.Builder
	b.WriteString(l.Host)
	if l.Port != nil {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(*l.Port), 10))
	}
	b.WriteString(l.Path)
	return b.String()
}
